package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotyt/internal/formatter"
	"github.com/desertthunder/spotyt/internal/models"
	"github.com/desertthunder/spotyt/internal/services"
	"github.com/desertthunder/spotyt/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
	defaultRate    = 5.0
	manifestFile   = "export_manifest.json"
)

// Cacher stores a fetched playlist. Implemented by repositories.TrackRepository.
type Cacher interface {
	ReplacePlaylist(ctx context.Context, export *models.PlaylistExport) (string, error)
}

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: json)
	OutputDir  string           // Base output directory (default: spotify_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
	RateLimit  float64          // Playlists started per second (default: 5)
}

// PlaylistExportResult is the outcome of exporting one playlist reference.
type PlaylistExportResult struct {
	Ref          string `json:"ref"`
	PlaylistID   string `json:"playlist_id,omitempty"`
	PlaylistName string `json:"playlist_name,omitempty"`
	Tracks       int    `json:"tracks"`
	File         string `json:"file,omitempty"`
	Cached       bool   `json:"cached"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and is written as the manifest.
type BulkExportResult struct {
	Format            formatter.Format       `json:"format"`
	OutputDirectory   string                 `json:"output_directory"`
	ExportedAt        time.Time              `json:"exported_at"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	Results           []PlaylistExportResult `json:"results"`
	ManifestPath      string                 `json:"-"`
}

// ExportEngine exports playlists from a single service.
type ExportEngine struct {
	fetcher services.PlaylistFetcher
	cache   Cacher
	cacheMu sync.Mutex
	logger  *log.Logger
}

// NewExportEngine creates an engine over fetcher. cache may be nil to skip caching.
func NewExportEngine(fetcher services.PlaylistFetcher, cache Cacher, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ExportEngine{fetcher: fetcher, cache: cache, logger: shared.WithLogger(logger, "task", "bulk_export")}
}

type exportJob struct {
	index int
	ref   string
}

// BulkExport fetches and writes every playlist in refs using a worker pool.
//
// Per-playlist failures are recorded in the result. The returned error is non-nil only when the
// output directory or manifest cannot be written, or ctx is cancelled.
func (e *ExportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	refs []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: no playlist service", shared.ErrMissingCredentials)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: at least one playlist reference", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("spotify_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	opts.NumWorkers = min(opts.NumWorkers, maxWorkers, len(refs))
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRate
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob)
	results := make([]PlaylistExportResult, len(refs))

	var completed int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res := e.exportOne(ctx, job.ref, opts)
				results[job.index] = res

				mu.Lock()
				completed++
				step := completed
				mu.Unlock()

				if res.Success {
					sendProgress(prog, exportCompletedUpdate(step, len(refs), res.PlaylistName, res.Tracks))
				} else {
					sendProgress(prog, exportFailedUpdate(step, len(refs), res.Ref, fmt.Errorf("%s", res.Error)))
				}
			}
		}()
	}

	var ctxErr error
	for i, ref := range refs {
		if err := limiter.Wait(ctx); err != nil {
			ctxErr = err
			break
		}
		sendProgress(prog, fetchingUpdate(i+1, len(refs), ref))
		jobs <- exportJob{index: i, ref: ref}
	}
	close(jobs)
	wg.Wait()

	result := &BulkExportResult{
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		TotalPlaylists:  len(refs),
		Results:         results,
	}
	for i := range result.Results {
		r := &result.Results[i]
		if r.Ref == "" {
			r.Ref = refs[i]
			r.Error = "not started: cancelled"
		}
		if r.Success {
			result.SuccessfulExports++
		} else {
			result.FailedExports++
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestFile)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if ctxErr != nil {
		return result, ctxErr
	}
	return result, nil
}

// exportOne fetches, writes and optionally caches a single playlist.
func (e *ExportEngine) exportOne(ctx context.Context, ref string, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{Ref: ref}

	export, err := e.fetcher.FetchPlaylist(ctx, ref)
	if err != nil {
		result.Error = fmt.Sprintf("failed to fetch playlist: %v", err)
		e.logger.Warn("fetch failed", "ref", ref, "error", err)
		return result
	}
	result.PlaylistID = export.Playlist.ID
	result.PlaylistName = export.Playlist.Name
	result.Tracks = len(export.Tracks)

	path := filepath.Join(opts.OutputDir, export.Playlist.ID+"_"+formatter.Filename(export, opts.Format))
	file, err := formatter.WriteExport(export, opts.Format, path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.File = file

	if e.cache != nil {
		e.cacheMu.Lock()
		_, err := e.cache.ReplacePlaylist(ctx, export)
		e.cacheMu.Unlock()
		if err != nil {
			result.Error = fmt.Sprintf("failed to cache playlist: %v", err)
			return result
		}
		result.Cached = true
	}

	result.Success = true
	e.logger.Debug("playlist exported", "ref", ref, "file", file)
	return result
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
