package render

// CronData is the input of the scheduled jobs file.
type CronData struct {
	AppName    string
	Minute     string
	Binary     string
	ConfigPath string
	LogDir     string
	// ClusterJobs adds the autostart and cleanup jobs, run on the master only.
	ClusterJobs bool
	// Autostop adds the autostop job.
	Autostop bool
}

// Cron renders /etc/cron.d/<app>.
func Cron(d CronData) ([]byte, error) {
	return execute("cron.tmpl", d)
}
