package config_test

import (
	"fmt"

	"github.com/go-dconfig/dconfig/config"
	"github.com/go-dconfig/dconfig/configbuild"
	yamlparser "github.com/go-dconfig/dconfig/config/parser/yaml"
)

// This example layers a base document with an environment override,
// resolves parameter and node references, then reads the result through
// the typed facade.
func Example() {
	documents := []string{
		`
host: prod-1
api:
  base_url: "https://%config.host%/v1"
  timeout: 30
`,
		`
api:
  timeout: 45
`,
	}

	root, err := configbuild.Build(yamlparser.NewParser(), documents, configbuild.DefaultOptions())
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	cfg := config.New(root, configbuild.DefaultOptions().Separator)

	baseURL, _, _ := config.Get[string](cfg, "api.base_url")
	timeout, _, _ := config.Get[int](cfg, "api.timeout")

	fmt.Println(baseURL)
	fmt.Println(timeout)

	// Output:
	// https://prod-1/v1
	// 45
}
