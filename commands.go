package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"social-analytics/api"
	"social-analytics/models"
	"social-analytics/services"
	"social-analytics/source/xapi"
	"social-analytics/storage"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "social-analytics",
		Short:         "Import social media analytics exports and report on them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newImportCmd(),
		newReportCmd(),
		newExportCmd(),
		newFetchCmd(),
		newServeCmd(),
		newClearCmd(),
	)
	return root
}

// withApp loads configuration and storage, runs fn, and releases everything.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

// resolveWindow returns the --window flag, or the configured default.
func (a *app) resolveWindow(flag string) (models.TimeWindow, error) {
	if flag == "" {
		flag = a.cfg.DefaultWindow
	}
	return services.ParseTimeWindow(flag)
}

// loadDataset returns the stored dataset; an unreadable one is reported and
// treated as empty.
func (a *app) loadDataset(ctx context.Context) *models.MergedDataset {
	ds, err := a.store.Load(ctx, nil)
	if err != nil {
		a.logger.Warn("[store] Stored dataset unreadable, starting empty: %v", err)
	}
	return ds
}

func (a *app) printReport(ds *models.MergedDataset, window models.TimeWindow) error {
	view, err := a.engine.View(ds, window)
	if err != nil {
		return err
	}
	a.report.Print(os.Stdout, view)
	return nil
}

func newImportCmd() *cobra.Command {
	var window string
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import one or more CSV exports into the stored dataset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				w, err := a.resolveWindow(window)
				if err != nil {
					return err
				}

				files := make([]models.UploadFile, 0, len(args))
				for _, path := range args {
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("read %s: %w", path, err)
					}
					files = append(files, models.UploadFile{Name: filepath.Base(path), Content: string(data)})
				}

				a.logger.Info("=== Importing %d file(s) ===", len(files))
				res, err := a.importer.Import(a.loadDataset(ctx), files)
				for _, fe := range res.Failed {
					a.logger.Error("%s: %v", fe.File, fe.Err)
				}
				if err != nil {
					return err
				}

				if err := a.store.Save(ctx, res.Dataset); err != nil {
					return err
				}
				a.logger.Info("Batch %s stored: %d imported, %d failed", res.BatchID, len(res.Imported), len(res.Failed))
				return a.printReport(res.Dataset, w)
			})
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", "", "report window: 7d, 30d, 90d or all")
	return cmd
}

func newReportCmd() *cobra.Command {
	var window string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a dashboard report of the stored dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				w, err := a.resolveWindow(window)
				if err != nil {
					return err
				}
				ds := a.loadDataset(ctx)
				if ds.Empty() {
					return errors.New("no dataset imported yet; run import first")
				}
				return a.printReport(ds, w)
			})
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", "", "report window: 7d, 30d, 90d or all")
	return cmd
}

func newExportCmd() *cobra.Command {
	var window, dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the windowed daily series and top posts as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				w, err := a.resolveWindow(window)
				if err != nil {
					return err
				}
				if dir == "" {
					dir = a.cfg.ExportDir
				}

				ds := a.loadDataset(ctx)
				if ds.Empty() {
					return errors.New("no dataset imported yet; run import first")
				}
				view, err := a.engine.View(ds, w)
				if err != nil {
					return err
				}

				seriesPath := filepath.Join(dir, fmt.Sprintf("series_%s.csv", w))
				if err := writeSeries(seriesPath, view.Series); err != nil {
					return err
				}
				postsPath := filepath.Join(dir, fmt.Sprintf("top_posts_%s.csv", w))
				if err := writePosts(postsPath, view.TopPosts); err != nil {
					return err
				}

				a.logger.Info("Exported %d days → %s | %d posts → %s",
					len(view.Series), seriesPath, len(view.TopPosts), postsPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", "", "export window: 7d, 30d, 90d or all")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory (default EXPORT_DIR)")
	return cmd
}

func writeSeries(path string, days []models.DailyMetric) (err error) {
	cw, err := storage.NewSeriesWriter(path)
	if err != nil {
		return err
	}
	defer closeInto(&err, cw, path)
	return cw.WriteSeries(days)
}

func writePosts(path string, posts []models.TopPostView) (err error) {
	cw, err := storage.NewPostsWriter(path)
	if err != nil {
		return err
	}
	defer closeInto(&err, cw, path)
	return cw.WritePosts(posts)
}

// closeInto closes c and reports its error through err unless err is
// already set.
func closeInto(err *error, c io.Closer, name string) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close %s: %w", name, cerr)
	}
}

func newFetchCmd() *cobra.Command {
	var (
		days   int
		userID string
		window string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Replace the stored dataset with posts fetched from the API proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				w, err := a.resolveWindow(window)
				if err != nil {
					return err
				}
				session := xapi.Session{AccessToken: a.cfg.XAccessToken}
				client := xapi.NewClient(a.cfg.XAPIBaseURL, nil, a.cfg.MaxRetries, a.logger)

				profile, err := client.FetchProfile(ctx, session)
				if err != nil {
					return fmt.Errorf("fetch profile: %w", err)
				}
				if userID == "" {
					userID = a.cfg.XUserID
				}
				if userID == "" {
					userID = profile.ID
				}

				posts, err := client.FetchPosts(ctx, session, userID, days)
				if err != nil && len(posts) == 0 {
					return fmt.Errorf("fetch posts: %w", err)
				}
				if err != nil {
					a.logger.Warn("[xapi] Stopped early after %d posts: %v", len(posts), err)
				}

				ds := a.importer.BuildFromAPIPosts(posts, *profile, days)
				if err := a.store.Save(ctx, ds); err != nil {
					return err
				}
				return a.printReport(ds, w)
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "how many days of posts to fetch")
	cmd.Flags().StringVar(&userID, "user", "", "user id (default X_USER_ID, then the profile id)")
	cmd.Flags().StringVarP(&window, "window", "w", "", "report window: 7d, 30d, 90d or all")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the import and dashboard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				window, err := a.resolveWindow("")
				if err != nil {
					return err
				}

				h := api.NewHandler(a.logger, a.store, a.importer, a.engine, api.Options{
					DefaultWindow:  window,
					MaxUploadBytes: a.cfg.MaxUploadBytes,
				})
				srv := api.NewServer(api.NewRouter(h, a.registry, a.logger),
					a.cfg.HTTPPort, a.cfg.ReadTimeout, a.cfg.WriteTimeout, a.cfg.ShutdownTimeout, a.logger)

				a.logger.Info("=== Social analytics API starting (env: %s, store: %s) ===", a.cfg.AppEnv, a.cfg.StoreBackend)
				return srv.Run(ctx)
			})
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.store.Remove(ctx); err != nil {
					return err
				}
				a.logger.Info("Stored dataset %q removed", a.cfg.DatasetKey)
				return nil
			})
		},
	}
}
