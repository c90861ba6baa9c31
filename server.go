package serverboard

import "github.com/jpalmerr/serverboard/internal/api"

// Server is a managed server record as stored by the backend.
type Server struct {
	ID        int64  `json:"id"`
	IPAddress string `json:"ipAddress"`
	Name      string `json:"name"`
	Memory    string `json:"memory"`
	Type      string `json:"type"`
	ImageURL  string `json:"imageUrl"`
	Status    Status `json:"status"`
}

// ResponseData is the payload section of a [Response].
//
// Servers is set by list, filter and every view-model update; Server by
// save and ping; Deleted by delete.
type ResponseData struct {
	Servers []Server `json:"servers,omitempty"`
	Server  *Server  `json:"server,omitempty"`
	Deleted *bool    `json:"deleted,omitempty"`
}

// Response is the backend's response envelope.
type Response struct {
	TimeStamp        string       `json:"timeStamp,omitempty"`
	StatusCode       int          `json:"statusCode"`
	Status           string       `json:"status,omitempty"`
	Reason           string       `json:"reason,omitempty"`
	Message          string       `json:"message,omitempty"`
	DeveloperMessage string       `json:"developerMessage,omitempty"`
	Data             ResponseData `json:"data"`
}

// Clone returns a deep copy of the response. A nil receiver returns nil.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Data.Servers = copyServers(r.Data.Servers)
	if r.Data.Server != nil {
		s := *r.Data.Server
		cp.Data.Server = &s
	}
	if r.Data.Deleted != nil {
		d := *r.Data.Deleted
		cp.Data.Deleted = &d
	}
	return &cp
}

// AppState is one state of the view-model as rendered by the view.
//
// AppData is set when DataState is [DataStateLoaded]; Error is set when it
// is [DataStateError]. A loading state carries neither.
type AppState struct {
	DataState DataState `json:"dataState"`
	AppData   *Response `json:"appData,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// copyServers returns a copy of the slice, or nil if input is nil.
func copyServers(servers []Server) []Server {
	if servers == nil {
		return nil
	}
	return append([]Server(nil), servers...)
}

func serverFromAPI(s api.Server) Server {
	return Server{
		ID:        s.ID,
		IPAddress: s.IPAddress,
		Name:      s.Name,
		Memory:    s.Memory,
		Type:      s.Type,
		ImageURL:  s.ImageURL,
		Status:    Status(s.Status),
	}
}

func serverToAPI(s Server) api.Server {
	return api.Server{
		ID:        s.ID,
		IPAddress: s.IPAddress,
		Name:      s.Name,
		Memory:    s.Memory,
		Type:      s.Type,
		ImageURL:  s.ImageURL,
		Status:    string(s.Status),
	}
}

func responseFromAPI(r *api.Response) *Response {
	if r == nil {
		return nil
	}
	out := &Response{
		TimeStamp:        r.TimeStamp,
		StatusCode:       r.StatusCode,
		Status:           r.Status,
		Reason:           r.Reason,
		Message:          r.Message,
		DeveloperMessage: r.DeveloperMessage,
	}
	if r.Data.Servers != nil {
		out.Data.Servers = make([]Server, len(r.Data.Servers))
		for i, s := range r.Data.Servers {
			out.Data.Servers[i] = serverFromAPI(s)
		}
	}
	if r.Data.Server != nil {
		s := serverFromAPI(*r.Data.Server)
		out.Data.Server = &s
	}
	if r.Data.Deleted != nil {
		d := *r.Data.Deleted
		out.Data.Deleted = &d
	}
	return out
}
