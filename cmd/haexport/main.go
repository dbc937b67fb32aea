package main

import (
	"os"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/cmd/haexport/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
