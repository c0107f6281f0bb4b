package cmd

import (
	"github.com/simonvc/ledgercore/internal/accounting"
	"github.com/simonvc/ledgercore/internal/config"
	"github.com/simonvc/ledgercore/internal/events"
	"github.com/simonvc/ledgercore/internal/server"
	"github.com/simonvc/ledgercore/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := config.NewLogger(flagLogLevel, flagLogFormat)

		st, err := store.Open(flagDBDriver, flagDB, store.Options{MaxOpenConns: cfg.DBMaxOpenConns})
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Ping(cmd.Context()); err != nil {
			return err
		}

		var publisher events.Publisher = events.Nop{}
		if len(cfg.KafkaBrokers) > 0 {
			publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
			logger.WithFields(logrus.Fields{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic}).Info("publishing journal events")
		}
		defer publisher.Close()

		svc := accounting.NewService(st, accounting.Options{
			BaseCurrency:   cfg.BaseCurrency,
			SummaryEntries: cfg.SummaryEntries,
			Publisher:      publisher,
		}, logger)

		logger.WithFields(logrus.Fields{"driver": flagDBDriver}).Info("store opened")
		return server.New(svc, serveAddr, logger).ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", cfg.Addr, "Listen address")
	rootCmd.AddCommand(serveCmd)
}
