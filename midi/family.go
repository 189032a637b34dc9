package midi

// General MIDI program numbers group into 16 instrument families of 8
// programs each.
var families = [16]string{
	"piano",
	"chromatic percussion",
	"organ",
	"guitar",
	"bass",
	"strings",
	"ensemble",
	"brass",
	"reed",
	"pipe",
	"synth lead",
	"synth pad",
	"synth effects",
	"ethnic",
	"percussive",
	"sound effects",
}

// Family maps a GM program number to its instrument family.
func Family(program uint8) string {
	if program > 127 {
		return ""
	}
	return families[program/8]
}
