package models

import "io"

// AudioUpload - голосовая запись, приложенная к обращению
type AudioUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
