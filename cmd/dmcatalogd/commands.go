package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opst/dmcatalog/pkg/catalog"
	bconf "github.com/opst/dmcatalog/pkg/configs/backend"
	"github.com/opst/dmcatalog/pkg/domain/dmcatalog"
	"github.com/opst/dmcatalog/pkg/notification"
	"github.com/opst/dmcatalog/pkg/tracing"
	"github.com/opst/dmcatalog/pkg/utils/filewatch"
	"github.com/opst/dmcatalog/pkg/workflow"
)

const envPrefix = "DMCATALOG"

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "dmcatalogd",
		Short:         "versioned partition catalog",
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "path to config file. (env: DMCATALOG_CONFIG)")
	flags.String("loglevel", "warn", "log level. debug|info|warn|error|off (env: DMCATALOG_LOGLEVEL)")
	flags.String("schema-repo", "", "schema repository path. empty means the embedded one. (env: DMCATALOG_SCHEMA_REPO)")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	root.AddCommand(
		newServeCommand(v),
		newSchemaCommand(v),
		newTaskCommand(v),
	)
	return root
}

// openCatalog loads the config and opens stores.
func openCatalog(ctx context.Context, v *viper.Viper) (*bconf.BackendConfig, dmcatalog.Catalog, error) {
	path := v.GetString("config")
	if path == "" {
		return nil, nil, errors.New("config file is not specified. use --config or DMCATALOG_CONFIG")
	}
	conf, err := bconf.LoadBackendConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("can not read configuration: %w", err)
	}

	options := []dmcatalog.Option{}
	if repo := v.GetString("schema-repo"); repo != "" {
		options = append(options, dmcatalog.WithSchemaRepository(repo))
	}
	cat, err := dmcatalog.New(ctx, conf, options...)
	if err != nil {
		return nil, nil, err
	}
	return conf, cat, nil
}

func newService(
	conf *bconf.BackendConfig,
	cat dmcatalog.Catalog,
	logger *log.Logger,
	options ...catalog.Option,
) *catalog.Service {
	options = append([]catalog.Option{
		catalog.WithPolicy(conf.Availability().Policy()),
		catalog.WithRetry(conf.Registration().MaxRetries(), conf.Registration().RetryInterval()),
		catalog.WithLogger(logger),
	}, options...)
	return catalog.New(cat.Data(), cat.Formats(), cat.Calendar(), options...)
}

func newServeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "start the catalog server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			loglevel := v.GetString("loglevel")

			conf, cat, err := openCatalog(ctx, v)
			if err != nil {
				return err
			}
			defer cat.Close()
			{
				ctx_, ccan := cat.Schema().Context(ctx)
				defer ccan()
				ctx = ctx_
			}
			{
				ctx_, wcan, err := filewatch.UntilChanged(ctx, v.GetString("config"))
				if err != nil {
					return fmt.Errorf("can not watch configuration: %w", err)
				}
				defer wcan()
				ctx = ctx_
			}

			tp, err := tracing.NewProvider(conf.Tracing().Enabled(), os.Stdout)
			if err != nil {
				return err
			}
			defer func() {
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer scancel()
				tp.Shutdown(sctx)
			}()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			svc := newService(
				conf, cat, newLogger("catalog", loglevel),
				catalog.WithTracer(tp.Tracer()),
				catalog.WithRegisterer(reg),
			)
			server := BuildServer(svc, notification.Log(newLogger("notification", loglevel)), reg, loglevel)
			for _, r := range server.Routes() {
				server.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
			}

			ch := make(chan error, 1)
			go func() {
				defer close(ch)
				if err := server.Start(fmt.Sprintf(":%d", conf.Port())); err != nil && !errors.Is(err, http.ErrServerClosed) {
					ch <- err
				}
			}()

			var exit error
			select {
			case <-ctx.Done(): // wait
				if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
					server.Logger.Infof("context has been done: %s, cause: %s", ctx.Err(), cause)
					exit = cause
				}
			case err := <-ch:
				if err != nil {
					server.Logger.Error("server stops with error:", err)
					exit = err
				}
			}

			server.Logger.Info("shutting down...")
			qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer qcancel()
			if err := server.Shutdown(qctx); err != nil {
				return errors.Join(exit, fmt.Errorf("shutdown with error: %w", err))
			}
			return exit
		},
	}
}

func newSchemaCommand(v *viper.Viper) *cobra.Command {
	schema := &cobra.Command{
		Use:   "schema",
		Short: "manage database schema",
	}

	schema.AddCommand(
		&cobra.Command{
			Use:   "upgrade",
			Short: "apply schema versions newer than the database has",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				_, cat, err := openCatalog(ctx, v)
				if err != nil {
					return err
				}
				defer cat.Close()

				if err := cat.Schema().Upgrade(ctx); err != nil {
					return fmt.Errorf("schema upgrade is failed: %w", err)
				}
				current, err := cat.Schema().Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema is upgraded to version %d\n", current)
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "show schema versions of the database and the repository",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				_, cat, err := openCatalog(ctx, v)
				if err != nil {
					return err
				}
				defer cat.Close()

				current, err := cat.Schema().Version(ctx)
				if err != nil {
					return err
				}
				latest, err := cat.Schema().Latest(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "current: %d\nlatest: %d\n", current, latest)
				return nil
			},
		},
	)
	return schema
}

// parseParams reads "name=value" arguments.
func parseParams(args []string) (workflow.Params, error) {
	params := workflow.Params{}
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("parameter should be name=value: %q", a)
		}
		params[strings.TrimSpace(name)] = value
	}
	return params, nil
}

func newTaskCommand(v *viper.Viper) *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "run a workflow task, and print output variables as JSON",
	}

	run := func(newTask func(*catalog.Service) workflow.Task) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			params, err := parseParams(args)
			if err != nil {
				return err
			}

			conf, cat, err := openCatalog(ctx, v)
			if err != nil {
				return err
			}
			defer cat.Close()

			svc := newService(conf, cat, newLogger("catalog", v.GetString("loglevel")))
			vars, taskErr := workflow.Run(ctx, newTask(svc), params)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(vars); err != nil {
				return errors.Join(taskErr, err)
			}
			return taskErr
		}
	}

	task.AddCommand(
		&cobra.Command{
			Use:   "check-availability [name=value...]",
			Short: "check availability of Data, and set " + workflow.VariableIsAllDataAvailable,
			RunE: run(func(svc *catalog.Service) workflow.Task {
				return workflow.CheckAvailability(svc)
			}),
		},
		&cobra.Command{
			Use:   "get-key-prefix [name=value...]",
			Short: "derive the key prefix of Data, and set " + workflow.VariableKeyPrefix,
			RunE: run(func(svc *catalog.Service) workflow.Task {
				return workflow.GetKeyPrefix(svc)
			}),
		},
	)
	return task
}
