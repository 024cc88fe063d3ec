// Package reconcile folds upload outcomes into the screen's display state.
package reconcile

import (
	"fmt"
	"log"
	"strconv"

	"github.com/jask/foodcalorie/internal/result"
)

// NullResultNotice is shown when the service answers without a payload.
const NullResultNotice = "Result is Null"

// Phase is the reconciler's upload phase.
type Phase int

const (
	Idle Phase = iota
	InFlight
)

func (p Phase) String() string {
	if p == InFlight {
		return "in_flight"
	}
	return "idle"
}

// UIState is everything the screen renders from upload results.
type UIState struct {
	FoodName       string
	FoodPeople     string
	FoodCalorie    string
	InfoVisible    bool
	LoadingVisible bool
}

// Indicator is the change a reconcile step asks of the loading indicator.
type Indicator int

const (
	IndicatorKeep Indicator = iota
	IndicatorShow
	IndicatorHide
)

// Effect describes what changed after one outcome.
type Effect struct {
	State     UIState
	Indicator Indicator
	Notice    string
	HasNotice bool
}

// Reconciler owns UIState. It is not safe for concurrent use; callers serialise
// Reconcile on one goroutine.
type Reconciler struct {
	phase Phase
	state UIState
}

// New returns a reconciler in the Idle phase with an empty state.
func New() *Reconciler {
	return &Reconciler{}
}

// State returns the current display state.
func (r *Reconciler) State() UIState { return r.state }

// Phase returns the current upload phase.
func (r *Reconciler) Phase() Phase { return r.phase }

// Reconcile applies one outcome.
func (r *Reconciler) Reconcile(o result.Outcome) Effect {
	eff := Effect{Indicator: IndicatorKeep}
	switch v := o.(type) {
	case result.Loading:
		if r.phase != InFlight {
			r.phase = InFlight
			r.state.LoadingVisible = true
			eff.Indicator = IndicatorShow
		}
	case result.Success:
		if len(v.Items) > 0 {
			first := v.Items[0]
			r.state.FoodName = first.Name
			r.state.FoodPeople = strconv.Itoa(first.People)
			r.state.FoodCalorie = FormatCalories(first.Calories)
			r.state.InfoVisible = true
			log.Printf("debug: prediction %s %d %s", first.Name, first.People, r.state.FoodCalorie)
		}
		eff.Indicator = r.settle()
	case result.APIError:
		eff.Indicator = r.settle()
		eff.Notice, eff.HasNotice = fmt.Sprintf("Error Code: %d Cause: %s", v.Code, v.Message), true
	case result.NetworkError:
		eff.Indicator = r.settle()
		eff.Notice, eff.HasNotice = v.Message, true
	case result.EmptyResult:
		eff.Indicator = r.settle()
		eff.Notice, eff.HasNotice = NullResultNotice, true
	default:
		// unknown variants are ignored
	}
	eff.State = r.state
	return eff
}

// settle moves back to Idle and reports the indicator change needed.
func (r *Reconciler) settle() Indicator {
	wasInFlight := r.phase == InFlight
	r.phase = Idle
	r.state.LoadingVisible = false
	if wasInFlight {
		return IndicatorHide
	}
	return IndicatorKeep
}

// FormatCalories renders a calorie value in its shortest decimal form.
func FormatCalories(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}
