package deps

import (
	"time"

	"github.com/MrSnakeDoc/snapstash/internal/index"
	"github.com/MrSnakeDoc/snapstash/internal/logger"
	"github.com/MrSnakeDoc/snapstash/internal/recordstore"
)

type Deps struct {
	Logger           logger.Logger
	StartTime        time.Time
	Version          string
	Commit           string
	BuildDate        string
	GoVersion        string
	TimeNow          func() time.Time      // for testing, defaults to time.Now
	AllowedHosts     []string              // Host headers allowed to access the server
	AllowedCIDRS     []string              // IPs allowed to access admin endpoints
	AllowedOrigins   []string              // CORS origins (the extension id)
	TrustProxy       bool                  // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Store            *recordstore.Store    // Saved items and undo history
	Categories       *index.CategoryIndex  // Accepted categories
	BackendName      string                // memory | redis | sqlite | file, reported by /infra
	CategoryFile     string                // empty when the built-in categories are used
	MaxPreviewLength int                   // stored titles are truncated to this length
	RequestTimeout   time.Duration         // per-request deadline
	RateLimitBurst   int                   // mutating endpoints: bucket size per IP
	RateLimitPerMin  int                   // mutating endpoints: refill per IP per minute
	ReloadTrigger    chan struct{}         // Channel to trigger manual category reload (nil if no category file)
}
