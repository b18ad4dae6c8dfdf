package music

const (
	Octaves        = 6
	NotesPerOctave = 12
	// PitchCount is the size of the pitch table; valid linear indices are
	// [1, PitchCount). Index 0 is reserved for rests.
	PitchCount = Octaves * NotesPerOctave
)

// Rest is the frequency of a silent note.
const Rest = -1

// pitches holds the frequency in Hz of every linear note index
// (octave*12 + semitone). Each octave runs A A# B C C# D D# E F F# G G#.
var pitches = [PitchCount]int{
	55, 58, 62, 65, 69, 73, 78, 82, 87, 92, 98, 104,
	110, 117, 123, 131, 139, 147, 156, 165, 175, 185, 196, 208,
	220, 233, 246, 261, 277, 293, 311, 330, 349, 370, 392, 415,
	440, 466, 493, 523, 554, 587, 622, 659, 698, 740, 784, 830,
	880, 932, 988, 1047, 1109, 1175, 1245, 1319, 1397, 1480, 1568, 1661,
	1760, 1865, 1976, 2093, 2217, 2349, 2489, 2637, 2794, 2960, 3136, 3322,
}

// LinearIndex combines an octave and a semitone offset into a pitch table
// key.
func LinearIndex(octave, semitone int) int {
	return octave*NotesPerOctave + semitone
}

// Frequency returns the table frequency for a linear note index, or Rest
// when the index is outside [1, PitchCount).
func Frequency(index int) int {
	if index <= 0 || index >= PitchCount {
		return Rest
	}
	return pitches[index]
}
