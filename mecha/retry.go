/*
Copyright © 2026 the krsweep authors.
This file is part of krsweep.

krsweep is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

krsweep is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with krsweep.  If not, see <http://www.gnu.org/licenses/>.
*/

package mecha

import (
	"time"

	"github.com/cenkalti/backoff"
	"github.com/mecharoot/krsweep"
	"github.com/sirupsen/logrus"
)

// Retry returns a simulator that retries failed invocations of sim
// with exponential backoff, up to maxRetries times.
func Retry(sim krsweep.Simulator, maxRetries uint64, log logrus.FieldLogger) krsweep.Simulator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return krsweep.SimulatorFunc(func() (krsweep.Conductivities, error) {
		var kr krsweep.Conductivities
		err := backoff.RetryNotify(
			func() error {
				var err error
				kr, err = sim.Invoke()
				return err
			},
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries),
			func(err error, d time.Duration) {
				log.WithFields(logrus.Fields{"retry_in": d}).Warnf("mecha: %v", err)
			},
		)
		return kr, err
	})
}
