// Copyright 2025 Google LLC
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

package ucum

import "fmt"

// ValidateUnit reports whether unit is valid UCUM syntax. allowEmptyUnits lets "" through as the
// dimensionless unit; allowCQLDateUnits lets CQL's own date/time unit keywords ("year", "day", ...)
// through in addition to their UCUM spellings.
func ValidateUnit(unit string, allowEmptyUnits, allowCQLDateUnits bool) (bool, string) {
	if unit == "" {
		if allowEmptyUnits {
			return true, ""
		}
		return false, "empty unit is not allowed"
	}
	if allowEmptyUnits {
		unit = normalizeEmptyUnit(unit)
	}
	if allowCQLDateUnits {
		unit = normalizeCQLDateUnit(unit)
	}

	unitValidityCache.RLock()
	valid, found := unitValidityCache.cache[unit]
	unitValidityCache.RUnlock()
	if !found {
		valid = validateUCUMSyntax(unit)
		unitValidityCache.Lock()
		unitValidityCache.cache[unit] = valid
		unitValidityCache.Unlock()
	}
	if !valid {
		return false, fmt.Sprintf("Invalid UCUM unit: '%s'", unit)
	}
	return true, ""
}

// ConvertUnit converts fromVal, expressed in fromUnit, to the equivalent value in toUnit.
func ConvertUnit(fromVal float64, fromUnit, toUnit string) (float64, error) {
	normFrom, normTo := normalizeUnit(fromUnit), normalizeUnit(toUnit)
	if normFrom == normTo {
		return fromVal, nil
	}
	if ok, factor := getConversionFactor(normFrom, normTo); ok {
		return fromVal * factor, nil
	}
	return 0, fmt.Errorf("cannot convert from '%s' to '%s'", fromUnit, toUnit)
}

// GetProductOfUnits returns the unit of the product of a value in unit1 and a value in unit2.
func GetProductOfUnits(unit1, unit2 string) string {
	unit1, unit2 = normalizeEmptyUnit(unit1), normalizeEmptyUnit(unit2)
	switch {
	case unit1 == "1":
		return unit2
	case unit2 == "1":
		return unit1
	case unit1 == unit2:
		return fmt.Sprintf("%s2", unit1)
	default:
		return fmt.Sprintf("%s.%s", unit1, unit2)
	}
}

// GetQuotientOfUnits returns the unit of the quotient of a value in unit1 divided by a value in
// unit2.
func GetQuotientOfUnits(unit1, unit2 string) string {
	unit1, unit2 = normalizeEmptyUnit(unit1), normalizeEmptyUnit(unit2)
	switch {
	case unit1 == unit2:
		return "1"
	case unit2 == "1":
		return unit1
	default:
		return fmt.Sprintf("%s/%s", unit1, unit2)
	}
}
