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
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

func testLog(buf *bytes.Buffer) *logrus.Logger {
	l := logrus.New()
	l.Out = buf
	l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	return l
}

func fastBackOff(t *testing.T) {
	old := newBackOff
	newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 3)
	}
	t.Cleanup(func() { newBackOff = old })
}

func TestMaybeDownloadLocal(t *testing.T) {
	buf := new(bytes.Buffer)
	if k, err := maybeDownload("/dev/null", testLog(buf)); k != "/dev/null" || err != nil {
		t.Errorf("Expected /dev/null, got %s (%v)", k, err)
	}
	if k, err := maybeDownload("/blah/test/", testLog(buf)); k != "/blah/test/" || err != nil {
		t.Errorf("Expected /blah/test/, got %s (%v)", k, err)
	}
}

func TestMaybeDownloadRemote(t *testing.T) {
	dir := t.TempDir()
	if err := ioutil.WriteFile(filepath.Join(dir, "table.nc"), []byte("flamelet"), 0644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	buf := new(bytes.Buffer)
	k, err := maybeDownload(srv.URL+"/table.nc", testLog(buf))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(k, "table.nc") || strings.HasPrefix(k, "http") {
		t.Errorf("Expected tempDir/table.nc, got %s", k)
	}
	b, err := ioutil.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "flamelet" {
		t.Errorf("downloaded %q", b)
	}
}

func TestMaybeDownloadRetry(t *testing.T) {
	fastBackOff(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("flamelet"))
	}))
	defer srv.Close()

	buf := new(bytes.Buffer)
	k, err := maybeDownload(srv.URL+"/table.nc", testLog(buf))
	if err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("server was called %d times", n)
	}
	if !strings.HasSuffix(k, "table.nc") {
		t.Errorf("Expected tempDir/table.nc, got %s", k)
	}
	if c := strings.Count(buf.String(), "retrying in"); c != 2 {
		t.Errorf("%d retries were logged:\n%s", c, buf.String())
	}
}

func TestMaybeDownloadNotFound(t *testing.T) {
	fastBackOff(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	buf := new(bytes.Buffer)
	if _, err := maybeDownload(srv.URL+"/table.nc", testLog(buf)); err == nil {
		t.Error("should be an error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("client errors should not be retried, but the server was called %d times", n)
	}
}

func TestMaybeDownloadGiveUp(t *testing.T) {
	fastBackOff(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	buf := new(bytes.Buffer)
	if _, err := maybeDownload(srv.URL+"/table.nc", testLog(buf)); err == nil {
		t.Error("should be an error")
	}
	if n := atomic.LoadInt32(&calls); n != 4 {
		t.Errorf("the server should be called once plus 3 retries, but was called %d times", n)
	}
}
