package constants

import "os"

// GetListenAddr returns the address the serve command binds to.
func GetListenAddr() string {
	addr := os.Getenv("NOTECAST_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

// GetS3Region returns the AWS region used for s3:// song URLs.
func GetS3Region() string {
	region := os.Getenv("NOTECAST_S3_REGION")
	if region != "" {
		return region
	}
	return "us-east-1"
}

// GetOutPortName returns the preferred MIDI out port substring, if any.
func GetOutPortName() string {
	return os.Getenv("NOTECAST_OUT_PORT")
}

// TickMs is the playback clock stride. Note onsets are quantized to the same
// stride, so every bucket lines up with exactly one tick.
const TickMs = 100

// FamilyOther is the query sentinel meaning "tracks with no family".
const FamilyOther = "other"

// NoteBufferSize is the instrument-event channel capacity.
const NoteBufferSize = 256

// NotificationBufferSize is the outgoing notification channel capacity.
const NotificationBufferSize = 64
