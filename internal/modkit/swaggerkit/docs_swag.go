//go:build swag

package swaggerkit

import docs "prsentinel/internal/services/api/docs"

var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }
