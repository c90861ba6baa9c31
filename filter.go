package serverboard

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when an operation needs a server list but none has
// been loaded.
var ErrNoData = errors.New("no server data to work with")

// noMatchMessage is the response message when a filter matches nothing.
const noMatchMessage = "No servers of this status are found"

// FilterServers narrows a response to servers with the given status.
//
// FilterServers is a pure function: the input response is not modified and
// no request is made. [StatusAll] keeps every server. The returned message
// describes the filter, or reports that nothing matched.
//
// Example:
//
//	up, err := serverboard.FilterServers(serverboard.StatusUp, resp)
//	// up.Message == "Servers filtered by SERVER UP status"
func FilterServers(status Status, resp *Response) (*Response, error) {
	if resp == nil {
		return nil, ErrNoData
	}

	out := resp.Clone()

	switch status {
	case StatusAll:
		out.Message = fmt.Sprintf("Servers filtered by %s status", status)
		return out, nil
	case StatusUp, StatusDown:
	default:
		return nil, fmt.Errorf("cannot filter by status %q", status)
	}

	matched := make([]Server, 0, len(resp.Data.Servers))
	for _, s := range resp.Data.Servers {
		if s.Status == status {
			matched = append(matched, s)
		}
	}

	out.Data = ResponseData{Servers: matched}
	if len(matched) > 0 {
		out.Message = fmt.Sprintf("Servers filtered by %s status", status.Label())
	} else {
		out.Message = noMatchMessage
	}
	return out, nil
}
