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

package flamelet

// refreshTimer counts Correct calls since the last refresh of one group of
// outputs. A refresh is due when the count reaches the period.
type refreshTimer struct {
	name   string
	period int
	count  int
}

func newRefreshTimer(name string, period int) (refreshTimer, error) {
	if period < 1 {
		return refreshTimer{}, configFault("%s must be at least 1 but is %d", name, period)
	}
	return refreshTimer{name: name, period: period}, nil
}

// tick advances the timer by one call and reports whether a refresh is due.
func (t *refreshTimer) tick() bool {
	t.count++
	return t.count >= t.period
}

// reset is called after a successful refresh.
func (t *refreshTimer) reset() { t.count = 0 }
