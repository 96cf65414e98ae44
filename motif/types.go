package motif

// Alphabet is the row order of every PWM and the column order of every PFM.
const Alphabet = "ACGT"

// Strand identifies the orientation a site was found on.
type Strand int8

const (
	Forward Strand = iota
	Reverse
)

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// Label marks a sequence as positive (1) or negative (0).
type Label int

const (
	Negative Label = 0
	Positive Label = 1
)

// Site is the best window of one original sequence.
type Site struct {
	Seq    string // the L bases as read on Strand
	Index  int    // position of the source sequence in its collection
	Strand Strand
	Offset int // window start on Strand
}

// LabeledScore is the unit handed from one iteration to the next.
type LabeledScore struct {
	Score float64
	Site  Site
	Label Label
}

// Split returns the parallel label, score and site-string slices used by
// the evaluator and the updater.
func Split(scored []LabeledScore) (labels []int, scores []float64, sites []string) {
	labels = make([]int, len(scored))
	scores = make([]float64, len(scored))
	sites = make([]string, len(scored))
	for i, s := range scored {
		labels[i] = int(s.Label)
		scores[i] = s.Score
		sites[i] = s.Site.Seq
	}
	return labels, scores, sites
}
