package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"trend-finder/domain/dto"
	"trend-finder/domain/model"
	"trend-finder/infrastructure/cache"
	youtubeclient "trend-finder/infrastructure/clients/youtube"
	"trend-finder/infrastructure/configuration"
	"trend-finder/infrastructure/logger"
	"trend-finder/infrastructure/persistence"
	"trend-finder/usecase"

	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type researchOptions struct {
	request dto.ResearchRequest
	workers int
	output  string
	noCache bool
}

func newResearchCmd() *cobra.Command {
	opts := &researchOptions{}
	var minSubs, maxSubs, minViews, limit int64

	cmd := &cobra.Command{
		Use:   "research [keywords]",
		Short: "Run a keyword research",
		Long: `Run a keyword research. Keywords are comma separated; flags left unset use the
configured defaults (last 7 days, under 100k subscribers, more than 10k views).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.request.Keywords = args[0]
			flags := cmd.Flags()
			if flags.Changed("min-subs") {
				opts.request.MinSubscribers = &minSubs
			}
			if flags.Changed("max-subs") {
				opts.request.MaxSubscribers = &maxSubs
			}
			if flags.Changed("min-views") {
				opts.request.MinViews = &minViews
			}
			if flags.Changed("limit") {
				opts.request.ResultLimit = &limit
			}
			return runResearch(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.request.StartDate, "start-date", "", "first publish day (YYYY-MM-DD)")
	flags.StringVar(&opts.request.EndDate, "end-date", "", "last publish day, inclusive (YYYY-MM-DD)")
	flags.Int64Var(&minSubs, "min-subs", 0, "minimum channel subscribers")
	flags.Int64Var(&maxSubs, "max-subs", 0, "maximum channel subscribers")
	flags.Int64Var(&minViews, "min-views", 0, "minimum video views (inclusive)")
	flags.Int64Var(&limit, "limit", 0, "search results per keyword (1-50)")
	flags.StringVar(&opts.request.VideoType, "video-type", "", "All, Shorts or Long")
	flags.StringVar(&opts.request.OnFailure, "on-failure", "", "skip or abort when a keyword fails")
	flags.IntVar(&opts.workers, "workers", 0, "concurrent statistics lookups per keyword")
	flags.StringVarP(&opts.output, "output", "o", "table", "table, json or csv")
	flags.BoolVar(&opts.noCache, "no-cache", false, "skip the redis statistics cache")
	return cmd
}

func runResearch(ctx context.Context, out io.Writer, opts *researchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch opts.output {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("%w: unknown output %q", model.ErrValidation, opts.output)
	}

	configuration.LoadEnvFromFile("config.env", ".env")
	configuration.Reload()
	query, err := opts.request.ToQuery(configuration.ResearchDefaults(time.Now().UTC()))
	if err != nil {
		return err
	}

	researchUsecase, closeFn, err := newResearchUsecase(ctx, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(ctx, configuration.ResearchTimeout())
	defer cancel()
	result, err := researchUsecase.Research(ctx, query)
	if err != nil {
		return err
	}
	return writeResult(out, opts.output, result)
}

func newResearchUsecase(ctx context.Context, opts *researchOptions) (usecase.IResearchUsecase, func(), error) {
	youtubeConfig, err := configuration.GetYouTubeConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:         youtubeConfig.APIKey,
		BaseURL:        youtubeConfig.BaseURL,
		ClientID:       youtubeConfig.ClientID,
		ClientSecret:   youtubeConfig.ClientSecret,
		RedirectURL:    youtubeConfig.RedirectURL,
		AccessToken:    youtubeConfig.AccessToken,
		RefreshToken:   youtubeConfig.RefreshToken,
		RequestTimeout: youtubeConfig.RequestTimeout,
		RateLimit:      youtubeConfig.RateLimit,
	})
	if err != nil {
		return nil, nil, err
	}

	var redisClient *redis.Client
	if rc := configuration.C.RedisClient; !opts.noCache && rc.Host != "" {
		redisClient, err = cache.NewCache(ctx, fmt.Sprintf("%s:%s", rc.Host, rc.Port), rc.Username, rc.Password, rc.DatabaseName)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without statistics cache")
			redisClient = nil
		}
	}
	closeFn := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}

	workers := opts.workers
	if workers <= 0 {
		workers = configuration.C.Research.Workers
	}
	repo := persistence.NewYouTubeRepository(client, cache.NewYouTubeCache(redisClient), youtubeConfig.CacheTTL)
	return usecase.NewResearchUsecase(repo, workers), closeFn, nil
}

func writeResult(out io.Writer, format string, result *model.ResearchResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "csv":
		w := csv.NewWriter(out)
		_ = w.Write(dto.CandidateCSVHeader)
		for _, c := range result.Candidates {
			_ = w.Write(dto.CandidateCSVRow(c))
		}
		w.Flush()
		return w.Error()
	}
	return writeTable(out, result)
}

func writeTable(out io.Writer, result *model.ResearchResult) error {
	for _, f := range result.Failures {
		fmt.Fprintf(out, "skipped %q: %s\n", f.Keyword, f.Error)
	}
	if result.Empty() {
		_, err := fmt.Fprintln(out, "No videos matched the filters.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VIEWS\tSUBS\tTYPE\tPUBLISHED\tCHANNEL\tTITLE\tURL")
	for _, c := range result.Candidates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Comma(c.ViewCount),
			humanize.Comma(c.SubscriberCount),
			c.VideoType(),
			c.PublishedAt.UTC().Format(dto.DateLayout),
			truncate(c.ChannelName, 24),
			truncate(c.Title, 48),
			c.URL(),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d of %d videos matched in %s\n", len(result.Candidates), result.Scanned, result.Elapsed.Round(time.Millisecond))
	return err
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
