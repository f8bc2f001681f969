package chat

// HistoryLen bounds the shared room history replayed to joining users.
const HistoryLen = 20

// History is a fixed-capacity ring of the latest room messages. Only
// Public, Emote and Announce messages are ever stored in it.
type History struct {
	buf   [HistoryLen]Message
	start int
	count int
}

// Push appends a message, discarding the oldest once full.
func (h *History) Push(msg Message) {
	if h.count < HistoryLen {
		h.buf[(h.start+h.count)%HistoryLen] = msg
		h.count++
		return
	}
	h.buf[h.start] = msg
	h.start = (h.start + 1) % HistoryLen
}

// Len reports how many messages are retained.
func (h *History) Len() int {
	return h.count
}

// All returns the retained messages in insertion order.
func (h *History) All() []Message {
	out := make([]Message, 0, h.count)
	for i := 0; i < h.count; i++ {
		out = append(out, h.buf[(h.start+i)%HistoryLen])
	}
	return out
}
