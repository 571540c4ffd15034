package input

import "strings"

// KeyCode is a resolved key identity. -1 denotes an unrecognized name
// (spec §4.G).
type KeyCode int

// Unknown is returned by Resolve for a name the table does not recognize.
const Unknown KeyCode = -1

var keyTable = buildKeyTable()

func buildKeyTable() map[string]KeyCode {
	t := make(map[string]KeyCode)
	code := KeyCode(0)
	add := func(names ...string) {
		for _, n := range names {
			t[n] = code
		}
		code++
	}
	for c := 'A'; c <= 'Z'; c++ {
		add(string(c))
	}
	for c := '0'; c <= '9'; c++ {
		add(string(c))
	}
	for i := 1; i <= 12; i++ {
		add("F" + itoa(i))
	}
	add("Up")
	add("Down")
	add("Left")
	add("Right")
	add("Shift")
	add("LeftShift")
	add("RightShift")
	add("Control")
	add("Ctrl")
	add("LeftControl")
	add("RightControl")
	add("Alt")
	add("LeftAlt")
	add("RightAlt")
	add("Super")
	add("Meta")
	add("Space")
	add("Enter")
	add("Return")
	add("Tab")
	add("Escape")
	add("Esc")
	return t
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// Resolve maps a key name to its KeyCode, case-insensitively falling back
// to Unknown for names not in the fixed table.
func Resolve(name string) KeyCode {
	if code, ok := keyTable[name]; ok {
		return code
	}
	for key, code := range keyTable {
		if strings.EqualFold(key, name) {
			return code
		}
	}
	return Unknown
}
