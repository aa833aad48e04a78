package hal

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "hal")
