package version

const AppName = "pdfmargins"

var (
	// These values are injected during build - DO NOT MODIFY
	Version   = "VERSION_PLACEHOLDER"
	CommitSHA = "COMMIT_PLACEHOLDER"
)

func GetVersionInfo() string {
	return Version + " (" + CommitSHA + ")"
}

func GetDetailedVersionInfo() string {
	return AppName + "\n" +
		"Version:  " + Version + "\n" +
		"Commit:   " + CommitSHA + "\n"
}
