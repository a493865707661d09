package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/concierge/internal/metrics"
	"github.com/mesh-intelligence/concierge/pkg/store"
)

const shutdownTimeout = 5 * time.Second

func newWatchCmd(f *rootFlags) *cobra.Command {
	var (
		interval    time.Duration
		metricsAddr string
		maxPolls    int
	)
	cmd := &cobra.Command{
		Use:   "watch <collection>",
		Short: "Poll a collection and print changes",
		Long: "Watch fetches the collection every interval and prints a line whenever the\n" +
			"number of entities or the error changes. With --metrics-addr the store\n" +
			"metrics are served in Prometheus format on /metrics.",
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			if interval <= 0 {
				return usagef("--interval must be positive")
			}

			reg := prometheus.NewRegistry()
			var extra []store.Option
			if metricsAddr != "" {
				extra = append(extra, store.WithObserver(metrics.New(reg)))
			}
			s, err := openSession(cmd, f, extra...)
			if err != nil {
				return err
			}
			defer s.close()
			ops, err := s.binding(name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var (
				mu        sync.Mutex
				seen      bool
				lastCount int
				lastMsg   string
			)
			unsubscribe := ops.subscribe(func(count int, loading bool, msg string) {
				if loading {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if seen && count == lastCount && msg == lastMsg {
					return
				}
				seen, lastCount, lastMsg = true, count, msg
				stamp := time.Now().Format(time.TimeOnly)
				if msg != "" {
					fmt.Fprintf(out, "%s  %s: error: %s\n", stamp, name.Plural, msg)
					return
				}
				fmt.Fprintf(out, "%s  %s: %d\n", stamp, name.Plural, count)
			})
			defer unsubscribe()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)

			if metricsAddr != "" {
				ln, err := net.Listen("tcp", metricsAddr)
				if err != nil {
					return fmt.Errorf("listen on %s: %w", metricsAddr, err)
				}
				srv := &http.Server{
					Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Serving metrics on http://%s/metrics\n", ln.Addr())
				g.Go(func() error {
					if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
				g.Go(func() error {
					<-ctx.Done()
					sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer scancel()
					return srv.Shutdown(sctx)
				})
			}

			g.Go(func() error {
				defer cancel()
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for polls := 0; maxPolls <= 0 || polls < maxPolls; polls++ {
					if polls > 0 {
						select {
						case <-ctx.Done():
							return nil
						case <-ticker.C:
						}
					}
					_ = ops.fetch(ctx)
				}
				return nil
			})

			s.logger.Info().Str("collection", name.Plural).Dur("interval", interval).Msg("watching")
			return g.Wait()
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "time between fetches")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().IntVar(&maxPolls, "max-polls", 0, "stop after this many fetches (0: until interrupted)")
	return cmd
}
