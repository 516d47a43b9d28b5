package timestep

import (
	"math"

	"github.com/stratus-model/stratus/model"
)

// Scheme selects the time integration method.
type Scheme uint8

const (
	Strang Scheme = iota
	ARK2
	ARK3
	ARK4
)

func (s Scheme) String() string {
	switch s {
	case Strang:
		return "Strang"
	case ARK2:
		return "ARK2"
	case ARK3:
		return "ARK3"
	case ARK4:
		return "ARK4"
	}
	return "unknown"
}

func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "", "strang":
		return Strang, nil
	case "ark2":
		return ARK2, nil
	case "ark3":
		return ARK3, nil
	case "ark4":
		return ARK4, nil
	}
	return 0, model.Errorf(model.ConfigurationError,
		"unknown time scheme %q", name)
}

// Tableau is a paired explicit/implicit additive Runge-Kutta Butcher
// tableau. AImp is lower triangular with the ESDIRK diagonal gamma.
type Tableau struct {
	Stages     int
	AExp, AImp [][]float64
	B          []float64 // shared weights
}

func newTableau(stages int) Tableau {
	t := Tableau{
		Stages: stages,
		AExp:   make([][]float64, stages),
		AImp:   make([][]float64, stages),
		B:      make([]float64, stages),
	}
	for i := 0; i < stages; i++ {
		t.AExp[i] = make([]float64, stages)
		t.AImp[i] = make([]float64, stages)
	}
	return t
}

// NewTableau returns the Butcher pair for an IMEX scheme. Strang splitting
// has no tableau and is driven directly by the integrator.
func NewTableau(s Scheme) (t Tableau, err error) {
	switch s {
	case ARK2:
		// ARS(2,3,2) of Ascher, Ruuth and Spiteri
		gamma := (2. - math.Sqrt2) / 2.
		delta := -2. * math.Sqrt2 / 3.
		t = newTableau(3)
		t.AExp[1][0] = gamma
		t.AExp[2][0] = delta
		t.AExp[2][1] = 1. - delta
		t.AImp[1][1] = gamma
		t.AImp[2][1] = 1. - gamma
		t.AImp[2][2] = gamma
		t.B[1] = 1. - gamma
		t.B[2] = gamma

	case ARK3:
		// ARK3(2)4L[2]SA of Kennedy and Carpenter
		gamma := 1767732205903. / 4055673282236.
		t = newTableau(4)
		t.AExp[1][0] = 1767732205903. / 2027836641118.
		t.AExp[2][0] = 5535828885825. / 10492691773637.
		t.AExp[2][1] = 788022342437. / 10882634858940.
		t.AExp[3][0] = 6485989280629. / 16251701735622.
		t.AExp[3][1] = -4246266847089. / 9704473918619.
		t.AExp[3][2] = 10755448449292. / 10357097424841.

		t.AImp[1][0] = gamma
		t.AImp[1][1] = gamma
		t.AImp[2][0] = 2746238789719. / 10658868560708.
		t.AImp[2][1] = -640167445237. / 6845629431997.
		t.AImp[2][2] = gamma
		t.AImp[3][0] = 1471266399579. / 7840856788654.
		t.AImp[3][1] = -4482444167858. / 7529755066697.
		t.AImp[3][2] = 11266239266428. / 11593286722821.
		t.AImp[3][3] = gamma

		t.B[0] = 1471266399579. / 7840856788654.
		t.B[1] = -4482444167858. / 7529755066697.
		t.B[2] = 11266239266428. / 11593286722821.
		t.B[3] = gamma

	case ARK4:
		// ARK4(3)6L[2]SA of Kennedy and Carpenter
		t = newTableau(6)
		t.AExp[1][0] = 1. / 2.
		t.AExp[2][0] = 13861. / 62500.
		t.AExp[2][1] = 6889. / 62500.
		t.AExp[3][0] = -116923316275. / 2393684061468.
		t.AExp[3][1] = -2731218467317. / 15368042101831.
		t.AExp[3][2] = 9408046702089. / 11113171139209.
		t.AExp[4][0] = -451086348788. / 2902428689909.
		t.AExp[4][1] = -2682348792572. / 7519795681897.
		t.AExp[4][2] = 12662868775082. / 11960479115383.
		t.AExp[4][3] = 3355817975965. / 11060851509271.
		t.AExp[5][0] = 647845179188. / 3216320057751.
		t.AExp[5][1] = 73281519250. / 8382639484533.
		t.AExp[5][2] = 552539513391. / 3454668386233.
		t.AExp[5][3] = 3354512671639. / 8306763924573.
		t.AExp[5][4] = 4040. / 17871.

		t.AImp[1][0] = 1. / 4.
		t.AImp[1][1] = 1. / 4.
		t.AImp[2][0] = 8611. / 62500.
		t.AImp[2][1] = -1743. / 31250.
		t.AImp[2][2] = 1. / 4.
		t.AImp[3][0] = 5012029. / 34652500.
		t.AImp[3][1] = -654441. / 2922500.
		t.AImp[3][2] = 174375. / 388108.
		t.AImp[3][3] = 1. / 4.
		t.AImp[4][0] = 15267082809. / 155376265600.
		t.AImp[4][1] = -71443401. / 120774400.
		t.AImp[4][2] = 730878875. / 902184768.
		t.AImp[4][3] = 2285395. / 8070912.
		t.AImp[4][4] = 1. / 4.
		t.AImp[5][0] = 82889. / 524892.
		t.AImp[5][2] = 15625. / 83664.
		t.AImp[5][3] = 69875. / 102672.
		t.AImp[5][4] = -2260. / 8211.
		t.AImp[5][5] = 1. / 4.

		t.B[0] = 82889. / 524892.
		t.B[2] = 15625. / 83664.
		t.B[3] = 69875. / 102672.
		t.B[4] = -2260. / 8211.
		t.B[5] = 1. / 4.

	default:
		err = model.Errorf(model.ConfigurationError,
			"no Butcher tableau for scheme %v", s)
	}
	return
}
