package handler

// StatusSuccess is the message of every successful API response.
const StatusSuccess = "success"

// Envelope is the success body of every API response:
//
//	{ "message": "success", "results": 2, "data": { "tours": [...] } }
//
// Results is only set for lists.
type Envelope[T any] struct {
	Message string `json:"message"`
	Results *int   `json:"results,omitempty"`
	Data    T      `json:"data"`
}

// Count reports the number of listed results, or -1 for single entities.
func (e Envelope[T]) Count() int {
	if e.Results == nil {
		return -1
	}
	return *e.Results
}

func success[T any](data T) Envelope[T] {
	return Envelope[T]{Message: StatusSuccess, Data: data}
}

func list[T any](n int, data T) Envelope[T] {
	return Envelope[T]{Message: StatusSuccess, Results: &n, Data: data}
}
