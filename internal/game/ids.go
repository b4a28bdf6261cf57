package game

// IDSequence hands out tile ids.
//
// Ids start at 0 and strictly increase. A sequence is owned by exactly one
// Game; it is not safe for concurrent use.
type IDSequence struct {
	next int64
}

// NewIDSequence creates a sequence whose first id is 0.
func NewIDSequence() *IDSequence {
	return &IDSequence{}
}

// Next returns the next id and advances the sequence.
func (s *IDSequence) Next() int64 {
	id := s.next
	s.next++
	return id
}

// Peek returns the id the next call to Next will return.
func (s *IDSequence) Peek() int64 {
	return s.next
}
