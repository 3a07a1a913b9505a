package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/AvengeMedia/dankfind/internal/config"
	"github.com/AvengeMedia/dankfind/internal/log"
	"github.com/AvengeMedia/dankfind/internal/query"
)

type BackendInterface interface {
	RunQuery(q *query.Query) ([]query.Result, error)
	Count() (int, error)
	Stats() (*config.IndexStats, error)
}

type IndexerInterface interface {
	Reindex(ctx context.Context, root string) (*config.IndexStats, error)
}

type WatcherInterface interface {
	Start() error
	Stop() error
	IsRunning() bool
}

// Server holds the pieces the HTTP operations act on. Root is the tree
// a reindex walks.
type Server struct {
	Backend BackendInterface
	Indexer IndexerInterface
	Watcher WatcherInterface
	Root    string
}

type SearchInput struct {
	Query string `query:"q" minLength:"1" doc:"Query in the dfind query language" example:"report extension:pdf -#archived"`
	Limit int    `query:"limit" default:"10" minimum:"1" maximum:"500" doc:"Maximum results"`
}

// SearchResultBody is the wire shape of a search response. Total
// counts every match; Results is capped at the requested limit.
type SearchResultBody struct {
	Query   string         `json:"query"`
	Total   int            `json:"total"`
	Results []query.Result `json:"results"`
}

type SearchOutput struct {
	Body *SearchResultBody
}

type ReindexOutput struct {
	Body struct {
		Status string `json:"status" example:"reindexing started"`
	}
}

// StatsBody pairs the live record count with the stats persisted by
// the last index run. LastIndex is null until a run completes.
type StatsBody struct {
	Records   int                `json:"records"`
	LastIndex *config.IndexStats `json:"last_index,omitempty"`
}

type StatsOutput struct {
	Body *StatsBody
}

type WatchStatusOutput struct {
	Body struct {
		Status string `json:"status" enum:"running,stopped" example:"running"`
	}
}

type WatchActionOutput struct {
	Body struct {
		Status string `json:"status" example:"watcher started"`
	}
}

func RegisterHandlers(srv *Server, api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "search",
		Summary:     "Search the catalogue",
		Description: "Run a query against the file catalogue and return matches ranked by fuzzy score",
		Method:      "GET",
		Path:        "/search",
		Tags:        []string{"Search"},
	}, func(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
		q, err := query.Parse(input.Query)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid query", err)
		}

		results, err := srv.Backend.RunQuery(q)
		if err != nil {
			return nil, huma.Error500InternalServerError("search failed", err)
		}

		total := len(results)
		if input.Limit > 0 && len(results) > input.Limit {
			results = results[:input.Limit]
		}

		return &SearchOutput{Body: &SearchResultBody{
			Query:   input.Query,
			Total:   total,
			Results: results,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reindex",
		Summary:     "Trigger full reindex",
		Description: "Clear the catalogue and walk the configured root from scratch (async operation)",
		Method:      "POST",
		Path:        "/reindex",
		Tags:        []string{"Index"},
	}, func(ctx context.Context, input *struct{}) (*ReindexOutput, error) {
		go func() {
			if _, err := srv.Indexer.Reindex(context.Background(), srv.Root); err != nil {
				log.Errorf("reindex failed: %v", err)
			}
		}()

		return &ReindexOutput{
			Body: struct {
				Status string `json:"status" example:"reindexing started"`
			}{
				Status: "reindexing started",
			},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "stats",
		Summary:     "Get catalogue statistics",
		Description: "Returns the record count and the stats of the last index run",
		Method:      "GET",
		Path:        "/stats",
		Tags:        []string{"Index"},
	}, func(ctx context.Context, input *struct{}) (*StatsOutput, error) {
		count, err := srv.Backend.Count()
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to read store", err)
		}
		last, err := srv.Backend.Stats()
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to read store", err)
		}

		return &StatsOutput{Body: &StatsBody{
			Records:   count,
			LastIndex: last,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "watchStart",
		Summary:     "Start file watcher",
		Description: "Enable live catalogue updates for created and modified files",
		Method:      "POST",
		Path:        "/watch/start",
		Tags:        []string{"Watch"},
	}, func(ctx context.Context, input *struct{}) (*WatchActionOutput, error) {
		if srv.Watcher.IsRunning() {
			return nil, huma.Error409Conflict("watcher already running")
		}

		if err := srv.Watcher.Start(); err != nil {
			return nil, huma.Error500InternalServerError("failed to start watcher", err)
		}

		return &WatchActionOutput{
			Body: struct {
				Status string `json:"status" example:"watcher started"`
			}{
				Status: "watcher started",
			},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "watchStop",
		Summary:     "Stop file watcher",
		Description: "Disable live catalogue updates",
		Method:      "POST",
		Path:        "/watch/stop",
		Tags:        []string{"Watch"},
	}, func(ctx context.Context, input *struct{}) (*WatchActionOutput, error) {
		if !srv.Watcher.IsRunning() {
			return nil, huma.Error409Conflict("watcher not running")
		}

		if err := srv.Watcher.Stop(); err != nil {
			return nil, huma.Error500InternalServerError("failed to stop watcher", err)
		}

		return &WatchActionOutput{
			Body: struct {
				Status string `json:"status" example:"watcher started"`
			}{
				Status: "watcher stopped",
			},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "watchStatus",
		Summary:     "Get watcher status",
		Description: "Check if the file watcher is currently running",
		Method:      "GET",
		Path:        "/watch/status",
		Tags:        []string{"Watch"},
	}, func(ctx context.Context, input *struct{}) (*WatchStatusOutput, error) {
		status := "stopped"
		if srv.Watcher.IsRunning() {
			status = "running"
		}

		return &WatchStatusOutput{
			Body: struct {
				Status string `json:"status" enum:"running,stopped" example:"running"`
			}{
				Status: status,
			},
		}, nil
	})
}
