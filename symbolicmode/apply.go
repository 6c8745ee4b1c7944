package symbolicmode

// classBits returns the bits a class letter selects. Setuid belongs to the
// owner, setgid to the group and sticky to other, so "o+t" sets the sticky bit
// while "u+t" and "o+s" change nothing.
func classBits(c byte) Mode {
	switch c {
	case 'u':
		return SetUID | UserRWX
	case 'g':
		return SetGID | GroupRWX
	case 'o':
		return Sticky | OtherRWX
	case 'a':
		return ModeBits
	}
	return 0
}

// Apply returns the mode after applying all clauses of e to mode, left to
// right. The umask is only used by clauses without class letters.
func (e *Expr) Apply(mode Mode, isDir bool, umask Mode) Mode {
	mode &= ModeBits
	umask &= PermBits
	for _, c := range e.clauses {
		for _, seg := range c.segments {
			mode = seg.apply(mode, c.who, isDir, umask)
		}
	}
	return mode
}

// requested returns the bits the segment asks for given the current mode,
// before limiting them to the clause's classes.
func (seg segment) requested(cur Mode, isDir bool) Mode {
	value := seg.value
	if seg.copy {
		// Spread the source class to all three classes.
		v := value & cur
		value = 0
		if v&readAll != 0 {
			value |= readAll
		}
		if v&writeAll != 0 {
			value |= writeAll
		}
		if v&execAll != 0 {
			value |= execAll
		}
	}
	if seg.condX && (isDir || cur&execAll != 0) {
		value |= execAll
	}
	return value
}

func (seg segment) apply(cur, who Mode, isDir bool, umask Mode) Mode {
	// Directories keep setuid/setgid on "=" unless the segment names them.
	var keep Mode
	if isDir {
		mentioned := seg.value
		if seg.copy {
			mentioned = 0
		} else if who != 0 {
			mentioned &= who
		}
		keep = (SetUID | SetGID) &^ mentioned
	}

	limit := who
	if who == 0 {
		limit = ModeBits &^ umask
	}
	value := seg.requested(cur, isDir) & limit &^ keep

	switch seg.op {
	case '=':
		preserved := keep
		if who != 0 {
			preserved |= ModeBits &^ who
		}
		return cur&preserved | value
	case '+':
		return cur | value
	default:
		return cur &^ value
	}
}
