// Package result defines the values an upload produces: the predictions a classifier
// returns and the closed set of outcomes the screen reconciles.
package result

// FoodPrediction is one classified food item.
type FoodPrediction struct {
	Name     string  `json:"name"`
	People   int     `json:"people"`
	Calories float64 `json:"calorie"`
}

// Outcome is one step of an upload's outcome stream. The set of variants is closed:
// only types in this package implement it.
type Outcome interface {
	outcome()
}

// Loading marks the start of an upload.
type Loading struct{}

// Success carries zero or more predictions.
type Success struct {
	Items []FoodPrediction
}

// APIError is a structured failure returned by the remote service.
type APIError struct {
	Code    int
	Message string
}

// NetworkError is a transport failure with no server response.
type NetworkError struct {
	Message string
}

// EmptyResult means the service answered without a usable payload.
type EmptyResult struct{}

func (Loading) outcome()      {}
func (Success) outcome()      {}
func (APIError) outcome()     {}
func (NetworkError) outcome() {}
func (EmptyResult) outcome()  {}

// Terminal reports whether o ends an upload session.
func Terminal(o Outcome) bool {
	switch o.(type) {
	case Success, APIError, NetworkError, EmptyResult:
		return true
	default:
		return false
	}
}

// Name returns a short label for logging.
func Name(o Outcome) string {
	switch o.(type) {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case APIError:
		return "api_error"
	case NetworkError:
		return "network_error"
	case EmptyResult:
		return "empty_result"
	default:
		return "unknown"
	}
}
