package httpx

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hatcher/taskpilot/pkg/errorx"
)

// errorBody is the backend's error envelope. Detail is either a plain message
// or, on 422, a list of field-level validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldError struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// ResponseError maps a non-2xx response onto the error taxonomy, carrying the
// backend's own message verbatim when one is present.
func ResponseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	detail := ""
	var fields map[string]string
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && len(eb.Detail) > 0 {
		var msg string
		if json.Unmarshal(eb.Detail, &msg) == nil {
			detail = msg
		} else {
			var fes []fieldError
			if json.Unmarshal(eb.Detail, &fes) == nil {
				fields = make(map[string]string, len(fes))
				for _, fe := range fes {
					name := "body"
					if len(fe.Loc) > 0 {
						name = fmt.Sprint(fe.Loc[len(fe.Loc)-1])
					}
					fields[name] = fe.Msg
					if detail == "" {
						detail = fe.Msg
					}
				}
			}
		}
	}

	apiErr := errorx.FromStatus(resp.StatusCode, detail)
	apiErr.Fields = fields
	return apiErr
}
