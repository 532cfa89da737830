// Package debugsrv implements sorth's optional HTTP introspection surface,
// reachable only from `sorth serve`: GET /words, GET /stack, and POST
// /eval against a single running *interp.Interpreter.
//
// Grounded on ClusterCockpit-cc-backend's server.go router setup (gorilla/
// mux for routing, gorilla/handlers for request logging middleware),
// scaled down from that repo's full REST/GraphQL API surface to the three
// endpoints a minimal extension ABI calls for.
package debugsrv

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/cstrainge/sorth/internal/dictionary"
	"github.com/cstrainge/sorth/internal/interp"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Server wraps an Interpreter behind a small HTTP surface. Requests are
// serialized through mu: the interpreter's data stack and dictionary are
// not safe for concurrent use, and a debug endpoint has no business
// racing a script's own sub-threads against each other.
type Server struct {
	it *interp.Interpreter
	mu sync.Mutex

	httpServer *http.Server
}

// New builds a Server listening on addr, logging each request through
// logOut via gorilla/handlers' combined log format.
func New(it *interp.Interpreter, addr string, logOut io.Writer) *Server {
	s := &Server{it: it}

	r := mux.NewRouter()
	r.HandleFunc("/words", s.handleWords).Methods(http.MethodGet)
	r.HandleFunc("/stack", s.handleStack).Methods(http.MethodGet)
	r.HandleFunc("/eval", s.handleEval).Methods(http.MethodPost)

	var handler http.Handler = r
	if logOut != nil {
		handler = handlers.CombinedLoggingHandler(logOut, r)
	}

	s.httpServer = &http.Server{Addr: addr, Handler: handler}
	return s
}

// ListenAndServe runs the server, blocking until it's shut down or fails.
func (s *Server) ListenAndServe() error { return s.httpServer.ListenAndServe() }

// Close shuts the server down immediately.
func (s *Server) Close() error { return s.httpServer.Close() }

type wordInfo struct {
	Name        string `json:"name"`
	Immediate   bool   `json:"immediate"`
	Scripted    bool   `json:"scripted"`
	Signature   string `json:"signature,omitempty"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []wordInfo
	s.it.Machine.Dict.Each(func(name string, word dictionary.Word) {
		if word.Visibility == dictionary.HiddenWord {
			return
		}
		out = append(out, wordInfo{
			Name:        name,
			Immediate:   word.IsImmediate(),
			Scripted:    word.Type == dictionary.Scripted,
			Signature:   word.Signature,
			Description: word.Description,
		})
	})

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.it.Machine.StackSnapshot()
	out := make([]string, len(snap))
	for i, v := range snap {
		out[i] = v.String()
	}

	writeJSON(w, http.StatusOK, out)
}

type evalResult struct {
	Stack []string `json:"stack"`
	Error string   `json:"error,omitempty"`
}

// handleEval compiles and runs the request body as source text against
// the live interpreter, returning the resulting stack (or a compile/run
// error, reported as JSON rather than an HTTP error status: the script's
// own failure is a normal result of this endpoint, not a server fault).
func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := evalResult{}
	if err := s.it.ProcessText("eval", string(body)); err != nil {
		result.Error = err.Error()
	}

	snap := s.it.Machine.StackSnapshot()
	result.Stack = make([]string, len(snap))
	for i, v := range snap {
		result.Stack[i] = v.String()
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(w, `{"error": %q}`, err.Error())
	}
}
