// Copyright 2017-26 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s1"
)

// Degrees is the decimal degree representation of a longitude or latitude.
type Degrees float64

// Epsilon is an enumeration of precisions that can be used when comparing Degrees.
type Epsilon float64

// Degrees units.
const (
	Degree           Degrees = 1
	radiansPerPi             = 180
	Radian                   = (radiansPerPi / math.Pi) * Degree
	MinutesPerDegree         = 60
	SecondsPerDegree         = 3600

	E5 Epsilon = 1e-5
	E6 Epsilon = 1e-6
	E7 Epsilon = 1e-7
	E9 Epsilon = 1e-9

	Half = 0.5

	coordinatePrecision = 7
	e7                  = 1e7
)

// Angle returns the equivalent s1.Angle.
func (d Degrees) Angle() s1.Angle { return s1.Angle(d) * s1.Degree }

// E7 returns the degrees as the fixed-point integer the OpenStreetMap
// database stores coordinates as.
func (d Degrees) E7() int32 { return d.Angle().E7() }

// DegreesFromE7 converts a fixed-point E7 coordinate back to Degrees.
func DegreesFromE7(v int32) Degrees { return Degrees(float64(v) / e7) }

func (d Degrees) String() string {
	var sign string
	if d < 0 {
		sign = "-"
	}

	val := math.Abs(float64(d))
	degrees := int(math.Floor(val))
	minutes := int(math.Floor(MinutesPerDegree * (val - float64(degrees))))
	seconds := SecondsPerDegree * (val - float64(degrees) - (float64(minutes) / MinutesPerDegree))

	return fmt.Sprintf("%s%d° %d' %s\"", sign, degrees, minutes, ftoa(seconds))
}

// MarshalJSON renders the degrees as a plain JSON number with the shortest
// representation that round-trips.
func (d Degrees) MarshalJSON() ([]byte, error) {
	return []byte(ftoa(float64(d))), nil
}

// EqualWithin checks if two degrees are within a specific epsilon.
func (d Degrees) EqualWithin(o Degrees, eps Epsilon) bool {
	return round(float64(d)/float64(eps))-round(float64(o)/float64(eps)) == 0
}

// round returns the value rounded to nearest as an int64.
func round(val float64) int64 {
	if val < 0 {
		return int64(val - Half)
	}

	return int64(val + Half)
}

// ParseDegrees converts a string to a Degrees instance, snapped to E7
// precision. Values outside [-180, 180] are rejected.
func ParseDegrees(s string) (Degrees, error) {
	u, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(u) || math.Abs(u) > float64(MaxLon) {
		return 0, fmt.Errorf("degrees %q out of range", s)
	}

	return DegreesFromE7(Degrees(u).E7()), nil
}

// ftoa formats f with at most seven decimal places, the precision the
// OpenStreetMap API stores coordinates with.
func ftoa(f float64) string {
	s := strconv.FormatFloat(f, 'f', coordinatePrecision, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")

	if s == "-0" {
		return "0"
	}

	return s
}
