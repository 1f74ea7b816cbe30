package InputParameters

import (
	"fmt"
	"math"

	"github.com/ghodss/yaml"

	"github.com/notargets/dgops/flux"
	"github.com/notargets/dgops/volume"
)

// Parameters obtained from the YAML input file. ghodss/yaml decodes through
// encoding/json, so the keys are taken from the json tags.
type InputParameters1D struct {
	Title           string  `json:"Title"`
	PolynomialOrder int     `json:"PolynomialOrder"`
	Elements        int     `json:"Elements"`
	XMin            float64 `json:"XMin"`
	XMax            float64 `json:"XMax"`
	Velocity        float64 `json:"Velocity"`
	FluxType        string  `json:"FluxType"`       // central or lax
	Strategy        string  `json:"Strategy"`       // auto, generic or batched
	ParallelDegree  int     `json:"ParallelDegree"` // 0 or 1 runs serially
}

func NewInputParameters1D() *InputParameters1D {
	return &InputParameters1D{
		Title:           "Advection 1D",
		PolynomialOrder: 3,
		Elements:        16,
		XMin:            0,
		XMax:            2 * math.Pi,
		Velocity:        2 * math.Pi,
		FluxType:        "lax",
		Strategy:        "auto",
		ParallelDegree:  1,
	}
}

// Parse overlays the values present in data onto ip.
func (ip *InputParameters1D) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters1D) Validate() (err error) {
	switch {
	case ip.PolynomialOrder < 1:
		err = fmt.Errorf("PolynomialOrder must be at least 1, have %d", ip.PolynomialOrder)
	case ip.Elements < 1:
		err = fmt.Errorf("Elements must be at least 1, have %d", ip.Elements)
	case !(ip.XMax > ip.XMin):
		err = fmt.Errorf("XMax %v must exceed XMin %v", ip.XMax, ip.XMin)
	case ip.ParallelDegree < 0:
		err = fmt.Errorf("ParallelDegree must not be negative, have %d", ip.ParallelDegree)
	}
	if err != nil {
		return
	}
	if _, err = ip.Flux(); err != nil {
		return
	}
	_, err = ip.ApplyStrategy()
	return
}

func (ip *InputParameters1D) Flux() (flux.FluxType, error) {
	return flux.NewFluxType(ip.FluxType)
}

func (ip *InputParameters1D) ApplyStrategy() (volume.Strategy, error) {
	return volume.NewStrategy(ip.Strategy)
}

func (ip *InputParameters1D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Elements\n", ip.Elements)
	fmt.Printf("[%8.5f,%8.5f]\t= Domain\n", ip.XMin, ip.XMax)
	fmt.Printf("%8.5f\t\t= Velocity\n", ip.Velocity)
	fmt.Printf("[%s]\t\t\t= Flux Type\n", ip.FluxType)
	fmt.Printf("[%s]\t\t\t= Strategy\n", ip.Strategy)
	fmt.Printf("[%d]\t\t\t\t= Parallel Degree\n", ip.ParallelDegree)
}
