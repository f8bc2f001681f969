package terminal

// KeyType classifies one decoded keystroke.
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEnter
	KeyBackspace
	KeyCtrlW
	KeyCtrlC
	KeyUp
	KeyDown
)

// Key is one decoded keystroke. Ch is set for KeyChar only.
type Key struct {
	Type KeyType
	Ch   byte
}

const (
	byteCtrlC     = 3
	byteBackspace = 8
	byteCtrlW     = 23
	byteEscape    = 27
	byteDelete    = 127
)

// Decoder turns raw channel bytes into keystrokes. Escape sequences can
// be split across reads, so the decoder keeps its state between calls.
type Decoder struct {
	escState int // 0 = none, 1 = got ESC, 2 = got ESC [
}

// Feed decodes a batch of raw bytes. Unrecognized control bytes and
// unfinished escape sequences produce no keys.
func (d *Decoder) Feed(data []byte) []Key {
	var keys []Key
	for _, b := range data {
		switch d.escState {
		case 1:
			if b == '[' {
				d.escState = 2
			} else {
				d.escState = 0
			}
			continue
		case 2:
			// Parameter bytes continue the sequence, a final byte ends it.
			if b >= '0' && b <= '?' {
				continue
			}
			d.escState = 0
			switch b {
			case 'A':
				keys = append(keys, Key{Type: KeyUp})
			case 'B':
				keys = append(keys, Key{Type: KeyDown})
			}
			continue
		}

		switch {
		case b == byteEscape:
			d.escState = 1
		case b == '\r' || b == '\n':
			keys = append(keys, Key{Type: KeyEnter})
		case b == byteBackspace || b == byteDelete:
			keys = append(keys, Key{Type: KeyBackspace})
		case b == byteCtrlW:
			keys = append(keys, Key{Type: KeyCtrlW})
		case b == byteCtrlC:
			keys = append(keys, Key{Type: KeyCtrlC})
		case b >= ' ':
			keys = append(keys, Key{Type: KeyChar, Ch: b})
		}
	}
	return keys
}
