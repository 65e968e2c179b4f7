//go:build !swag

package swaggerkit

// swag writes internal/services/api/docs; build with -tags swag afterwards
//go:generate swag init -g main.go -d ../../../cmd/prsentinel-api,../../../internal/services/api -o ../../../internal/services/api/docs

// without generated docs the UI still loads a skeleton listing the scoring route
var docReader = func() string {
	return `{"swagger":"2.0","info":{"title":"prsentinel","version":"dev"},` +
		`"paths":{"/predict":{"post":{"summary":"Score a pull request feature vector",` +
		`"responses":{"200":{"description":"reconstruction error"}}}}}}`
}
