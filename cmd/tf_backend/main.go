package main

import (
	"os"
)

// @title Transit Finance API
// @version 1.0
// @description General ledger, receivables and revenue bridge for a transport operator.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
