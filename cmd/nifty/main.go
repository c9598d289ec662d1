// Command nifty shares a file or directory: it packages the source,
// uploads it to a cloud provider, emails the recipient a shareable link
// and records the transfer in a ledger.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/niftyshare/nifty/errors"
)

func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := newRootCmd().Execute(); err != nil {
		if errors.IsInvalidRequest(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
