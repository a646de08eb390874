package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cheminee/search-engine/internal/httpapi"
	"github.com/cheminee/search-engine/internal/logging"
	"github.com/cheminee/search-engine/internal/writer"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			d := cliCtx.Deps
			server := &httpapi.Server{
				Engine:    d.Engine,
				Preparer:  d.Preparer,
				Scaffolds: d.Scaffolds,
				Indexes:   d.Indexes,
				Searcher:  d.Searcher,
				Indexer:   d.Indexer,
				Producer:  d.Producer,
				Encoder:   d.Encoder,
				Logger:    d.Logger,
				Cfg: httpapi.Config{
					Writer:          writer.Config{ChunkSize: d.Config.Writer.ChunkSize, MaxParallelChunks: d.Config.Writer.MaxParallelChunk, NotificationTopic: d.Config.Kafka.Topic},
					SearchPercent:   d.Config.Similarity.SearchPercent,
					TanimotoMinimum: d.Config.Similarity.TanimotoMinimum,
				},
			}

			if addr == "" {
				addr = fmt.Sprintf(":%d", d.Config.Server.Port)
			}
			d.Logger.Info("starting http server", logging.String("addr", addr))
			return http.ListenAndServe(addr, server.Router())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :<server.port> from config)")
	return cmd
}
