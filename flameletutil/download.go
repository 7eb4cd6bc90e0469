/*
Copyright © 2019 the flamelet authors.
This file is part of flamelet.

flamelet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

flamelet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with flamelet.  If not, see <http://www.gnu.org/licenses/>.
*/

package flameletutil

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// newBackOff returns the retry policy for downloads.
var newBackOff = func() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
}

// isURL returns whether p is an http:// or https:// URL.
func isURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// maybeDownload checks if the input is an existing file locally.
// If not, and it is a URL, it downloads the file and
// returns the path to the downloaded file. Failed downloads are retried
// with exponential backoff, and each retry is logged to log.
func maybeDownload(p string, log logrus.FieldLogger) (string, error) {
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		return p, nil
	}
	if !isURL(p) {
		return p, nil
	}
	u, err := url.Parse(p)
	if err != nil {
		return p, fmt.Errorf("flamelet: downloading %s: %v", p, err)
	}
	dir, err := ioutil.TempDir("", "flamelet")
	if err != nil {
		return p, fmt.Errorf("flamelet: failed creating temporary download directory: %v", err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = "table.nc"
	}
	dst := filepath.Join(dir, name)

	var permanent error
	err = backoff.RetryNotify(
		func() error {
			err := downloadHTTP(p, dst)
			if se, ok := err.(statusError); ok && se.code >= 400 && se.code < 500 {
				// Client errors are not retried.
				permanent = err
				return nil
			}
			return err
		},
		newBackOff(),
		func(err error, d time.Duration) {
			log.WithField("url", p).Warnf("%v: retrying in %v", err, d)
		},
	)
	if err == nil {
		err = permanent
	}
	if err != nil {
		return p, fmt.Errorf("flamelet: downloading %s: %v", p, err)
	}
	log.WithFields(logrus.Fields{"url": p, "file": dst}).Info("downloaded flamelet table")
	return dst, nil
}

type statusError struct {
	code   int
	status string
}

func (s statusError) Error() string { return "server returned " + s.status }

// downloadHTTP downloads the file at url to dst.
func downloadHTTP(url, dst string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError{code: resp.StatusCode, status: resp.Status}
	}
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, resp.Body); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
