// Command pingfs mounts a FUSE filesystem whose file contents live only
// as ICMP echo payloads bouncing off the hosts named in hostfile.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tredeske/u/golum"
	"github.com/tredeske/u/ulog"
	"github.com/tredeske/u/uexit"
)

func init() {
	golum.AddReloadable("pingfs", &Daemon{})
}

func main() {
	var username string
	var timeoutSeconds int

	flag.StringVar(&username, "u", "", "run the mount as this local user")
	flag.IntVar(&timeoutSeconds, "t", 1,
		"per-chunk and per-evaluation-round timeout, in seconds (1-59)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr,
			"usage: %s [-u username] [-t timeout_seconds] hostfile mountpoint\n",
			os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if 2 != flag.NArg() {
		flag.Usage()
		os.Exit(2)
	}
	hostFile := flag.Arg(0)
	mountPoint := flag.Arg(1)

	if timeoutSeconds < 1 || 59 < timeoutSeconds {
		fmt.Fprintf(os.Stderr, "-t must be between 1 and 59 seconds, got %d\n", timeoutSeconds)
		os.Exit(2)
	}
	if fi, statErr := os.Stat(mountPoint); statErr != nil || !fi.IsDir() {
		fmt.Fprintf(os.Stderr, "mountpoint %s is not a directory\n", mountPoint)
		os.Exit(2)
	}

	ulog.Init("", 0)

	section, err := golum.SectionFromConfig("pingfs", "pingfs", map[string]interface{}{
		"hostfile":       hostFile,
		"mountpoint":     mountPoint,
		"user":           username,
		"timeoutSeconds": timeoutSeconds,
	})
	if err != nil {
		ulog.Fatalf("building pingfs config: %s", err)
	}

	if err = golum.ReloadOne(section); err != nil {
		ulog.Fatalf("starting pingfs: %s", err)
	}

	exitNotifyC, exitReplyC := uexit.AtExit()
	go func() {
		<-exitNotifyC
		golum.Unload("pingfs")
		exitReplyC <- true
	}()

	uexit.SimpleSignalHandling()
}
