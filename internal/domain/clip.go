package domain

// AudioClip is one captured recording, opaque to everything but the backend.
type AudioClip struct {
	Data []byte
	MIME string
}

// Empty reports whether the clip carries no audio at all.
func (c AudioClip) Empty() bool {
	return len(c.Data) == 0
}
