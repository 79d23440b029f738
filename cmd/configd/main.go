// Command configd boots a minimal service that loads a layered
// configuration tree from one or more files and serves it read-only over
// HTTP, demonstrating configbuild, config, and the listener/middleware
// stack wired together through the Fx-based App.
package main

import (
	"flag"
	"net/http"
	"strings"
	"time"

	di "github.com/go-dconfig/dconfig"
	"github.com/go-dconfig/dconfig/config"
	"github.com/go-dconfig/dconfig/config/fetcher/file"
	jsonparser "github.com/go-dconfig/dconfig/config/parser/json"
	yamlparser "github.com/go-dconfig/dconfig/config/parser/yaml"
	"github.com/go-dconfig/dconfig/configbuild"
	"github.com/go-dconfig/dconfig/listener"
	"github.com/go-dconfig/dconfig/listener/middleware"

	"go.uber.org/fx"
)

const requestTimeout = 5 * time.Second

func main() {
	var (
		addr     = flag.String("addr", listener.DefaultAddress, "HTTP listen address")
		logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)

	var paths stringSliceFlag
	flag.Var(&paths, "config", "configuration file path (repeatable, later files win)")

	flag.Parse()

	app := di.NewApp(
		di.WithLogLevel(*logLevel),
		di.WithModules(
			fx.Supply(fx.Annotate([]string(paths), fx.ResultTags(`name:"configPaths"`))),
			fx.Provide(
				fx.Annotate(
					newConfig,
					fx.ParamTags(`name:"configPaths"`),
				),
			),
			fx.Provide(fx.Annotate(newHandler, fx.ResultTags(`name:"api"`))),
		),
		di.WithHTTPListener("api", listener.WithAddress(*addr)),
	)

	app.Run()
}

// stringSliceFlag lets -config be repeated on the command line.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func newConfig(paths []string) (*config.Config, error) {
	opts := configbuild.DefaultOptions()

	documents := file.Load(paths)
	parser := pickParser(paths)

	root, err := configbuild.Build(parser, documents, opts)
	if err != nil {
		return nil, err
	}

	return config.New(root, opts.Separator), nil
}

// pickParser chooses JSON when every supplied path ends in .json, YAML
// otherwise (the default surface syntax).
func pickParser(paths []string) configbuild.Parser {
	if len(paths) == 0 {
		return yamlparser.NewParser()
	}

	for _, p := range paths {
		if !strings.HasSuffix(p, ".json") {
			return yamlparser.NewParser()
		}
	}

	return jsonparser.NewParser()
}

func newHandler(cfg *config.Config) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/v1/config/", configHandler(cfg))

	var handler http.Handler = mux
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.Logging()(handler)
	handler = middleware.Compress()(handler)
	handler = middleware.Timeout(requestTimeout)(handler)

	return handler
}
