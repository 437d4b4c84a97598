package random

import (
	"math/rand/v2"

	"github.com/Doridian/synthDNS/handler"
	"github.com/Doridian/synthDNS/util"
	"github.com/miekg/dns"
)

var coinFaces = []string{"heads", "tails"}
var diceFaces = []string{"1", "2", "3", "4", "5", "6"}

// Generator answers with one of its faces, chosen uniformly.
type Generator struct {
	name  string
	faces []string

	// IntN returns a uniform random number in [0, n)
	IntN func(n int) int
}

func NewCoin() *Generator {
	return newGenerator("coin", coinFaces)
}

func NewDice() *Generator {
	return newGenerator("dice", diceFaces)
}

func newGenerator(name string, faces []string) *Generator {
	return &Generator{
		name:  name,
		faces: faces,
		IntN:  rand.IntN,
	}
}

func (r *Generator) HandleQuestion(req *handler.Request) ([]dns.RR, int, error) {
	face := r.faces[r.IntN(len(r.faces))]
	return []dns.RR{
		util.NewTXT(req.Question.Name, face),
	}, dns.RcodeSuccess, nil
}

func (r *Generator) GetName() string {
	return r.name
}
