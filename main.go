// @title Complaint Tracker API
// @version 1.0
// @description Campus complaint filing, triage, status history and feedback.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"complaint_tracker_backend/cmd"
	"os"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
