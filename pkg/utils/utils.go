package utils

import "os"

func GetDefaultOutputDir() string {
	tmpDir, err := os.MkdirTemp("", "pdfmargins-debug-*")
	if err != nil {
		// If we can't create a temp directory, fall back to local directory
		return "pdfmargins-debug"
	}
	return tmpDir
}
