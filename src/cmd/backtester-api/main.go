package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otellogrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/signal-backtester/src/backtester-api/router"
	"github.com/jiaming2012/signal-backtester/src/eventpubsub"
	"github.com/jiaming2012/signal-backtester/src/utils"
)

var rootCmd = &cobra.Command{
	Use:   "backtester-api",
	Short: "Serve backtest runs over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			log.Fatalf("error getting port: %v", err)
		}

		if err := run(port); err != nil {
			log.Fatalf("error running server: %v", err)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().Int("port", 8080, "Port to listen on.")

	cobra.CheckErr(rootCmd.Execute())
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Infof("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func run(port int) error {
	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Warnf("env not initialized: %v", err)
	}

	log.AddHook(otellogrus.NewHook(otellogrus.WithLevels(
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
		log.WarnLevel,
		log.InfoLevel,
	)))

	eventpubsub.Init()

	r := mux.NewRouter()
	r.Use(loggingMiddleware)
	router.SetupHandler(r)

	addr := fmt.Sprintf(":%d", port)
	log.Infof("listening on %s", addr)

	return http.ListenAndServe(addr, otelhttp.NewHandler(r, "backtester-api"))
}
