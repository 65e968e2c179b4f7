package ch

import (
	"os"
	"runtime"

	"prsentinel/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type product = struct{ Name, Version string }

// BuildClientInfo tags connections so system.query_log shows which job and
// build issued a query
func BuildClientInfo(role string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	bi := version.Info()
	return clickhouse.ClientInfo{Products: []product{
		{Name: bi.Service, Version: bi.Version},
		{Name: "role", Version: role},
		{Name: "commit", Version: bi.Commit},
		{Name: "go", Version: runtime.Version()},
		{Name: "host", Version: host},
	}}
}
