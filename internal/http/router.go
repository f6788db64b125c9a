package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth          *AuthHandler
	Clients       *ClientHandler
	Subscriptions *SubscriptionHandler
	Jobs          *JobHandler
	Quotes        *QuoteHandler

	// RequireSession guards staff endpoints. Public endpoints (login and
	// quote submission) bypass it; PublicRateLimit throttles them instead.
	RequireSession  func(http.Handler) http.Handler
	PublicRateLimit func(http.Handler) http.Handler

	// Middleware wraps the whole router, outermost first.
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protect := cfg.RequireSession
	if protect == nil {
		protect = passthrough
	}
	throttle := cfg.PublicRateLimit
	if throttle == nil {
		throttle = passthrough
	}

	if cfg.Auth != nil {
		createSession := throttle(http.HandlerFunc(cfg.Auth.CreateSession))
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			createSession.ServeHTTP(w, r)
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
	}

	if cfg.Clients != nil {
		mux.Handle("/clients", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Clients.List(w, r)
			case http.MethodPost:
				cfg.Clients.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/clients/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/clients/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithClientID(r.Context(), id))

			switch sub {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Clients.Get(w, r)
				case http.MethodPut:
					cfg.Clients.Update(w, r)
				case http.MethodDelete:
					cfg.Clients.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case "locations":
				switch r.Method {
				case http.MethodGet:
					cfg.Clients.ListLocations(w, r)
				case http.MethodPost:
					cfg.Clients.AddLocation(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			default:
				http.NotFound(w, r)
			}
		})))
	}

	if cfg.Subscriptions != nil {
		mux.Handle("/subscriptions", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Subscriptions.List(w, r)
			case http.MethodPost:
				cfg.Subscriptions.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/subscriptions/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/subscriptions/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithSubscriptionID(r.Context(), id))

			switch sub {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Subscriptions.Get(w, r)
				case http.MethodPut:
					cfg.Subscriptions.Update(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut)
				}
			case "pause":
				postOnly(w, r, cfg.Subscriptions.Pause)
			case "resume":
				postOnly(w, r, cfg.Subscriptions.Resume)
			case "cancel":
				postOnly(w, r, cfg.Subscriptions.Cancel)
			case "regenerate":
				postOnly(w, r, cfg.Subscriptions.Regenerate)
			default:
				http.NotFound(w, r)
			}
		})))
	}

	if cfg.Jobs != nil {
		mux.Handle("/jobs", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Jobs.List(w, r)
			case http.MethodPost:
				cfg.Jobs.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/jobs/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/jobs/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithJobID(r.Context(), id))

			switch sub {
			case "":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Jobs.Get(w, r)
			case "assign":
				postOnly(w, r, cfg.Jobs.Assign)
			case "start":
				postOnly(w, r, cfg.Jobs.Start)
			case "complete":
				postOnly(w, r, cfg.Jobs.Complete)
			case "skip":
				postOnly(w, r, cfg.Jobs.Skip)
			case "cancel":
				postOnly(w, r, cfg.Jobs.Cancel)
			default:
				http.NotFound(w, r)
			}
		})))
	}

	if cfg.Quotes != nil {
		submitQuote := throttle(http.HandlerFunc(cfg.Quotes.Submit))
		listQuotes := protect(http.HandlerFunc(cfg.Quotes.List))
		mux.HandleFunc("/quotes", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				submitQuote.ServeHTTP(w, r)
			case http.MethodGet:
				listQuotes.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.Handle("/quotes/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/quotes/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithQuoteID(r.Context(), id))

			switch sub {
			case "status":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Quotes.UpdateStatus(w, r)
			case "convert":
				postOnly(w, r, cfg.Quotes.Convert)
			default:
				http.NotFound(w, r)
			}
		})))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// splitResourcePath returns the resource id and the remaining sub-path of
// requests like /clients/{id}/locations.
func splitResourcePath(path, prefix string) (id, sub string) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path {
		return "", ""
	}
	parts := strings.SplitN(rest, "/", 2)
	id = parts[0]
	if len(parts) == 2 {
		sub = strings.Trim(parts[1], "/")
	}
	return id, sub
}

func postOnly(w http.ResponseWriter, r *http.Request, handle func(http.ResponseWriter, *http.Request)) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	handle(w, r)
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
