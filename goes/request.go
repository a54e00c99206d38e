// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package goes

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/geometry"
)

// Archive bucket names of the supported satellites
const (
	GOES16 = "noaa-goes16"
	GOES17 = "noaa-goes17"
	GOES18 = "noaa-goes18"
	GOES19 = "noaa-goes19"
)

// satelliteAliases maps accepted spellings to bucket names. EAST and WEST
// point at the current operational satellites.
var satelliteAliases = map[string]string{
	"16": GOES16, "G16": GOES16, "GOES16": GOES16, "GOES-16": GOES16,
	"17": GOES17, "G17": GOES17, "GOES17": GOES17, "GOES-17": GOES17,
	"18": GOES18, "G18": GOES18, "GOES18": GOES18, "GOES-18": GOES18, "WEST": GOES18,
	"19": GOES19, "G19": GOES19, "GOES19": GOES19, "GOES-19": GOES19, "EAST": GOES19,
}

var satelliteProjections = map[string]geometry.Projection{
	GOES16: geometry.GOESEast,
	GOES17: geometry.GOESWest,
	GOES18: geometry.GOESWest,
	GOES19: geometry.GOESEast,
}

var domainAliases = map[string]catalog.Sector{
	"C":         catalog.SectorCONUS,
	"CONUS":     catalog.SectorCONUS,
	"F":         catalog.SectorFullDisk,
	"FULL":      catalog.SectorFullDisk,
	"FULLDISK":  catalog.SectorFullDisk,
	"FULL DISK": catalog.SectorFullDisk,
	"M":         catalog.SectorMesoscale,
	"MESOSCALE": catalog.SectorMesoscale,
	"M1":        catalog.SectorMeso1,
	"M2":        catalog.SectorMeso2,
}

var productAliases = map[string]string{
	"GLM":  "GLM-L2-LCFA",
	"ABI":  "ABI-L2-MCMIP",
	"ABIC": "ABI-L2-MCMIPC",
	"ABIF": "ABI-L2-MCMIPF",
	"ABIM": "ABI-L2-MCMIPM",
}

// productNamePattern matches archive product directories such as
// ABI-L1b-RadC, ABI-L2-MCMIPM or GLM-L2-LCFA
var productNamePattern = regexp.MustCompile(`^[A-Z]{3,4}-L[0-9][A-Za-z]?-[A-Za-z0-9]+$`)

// Request is a fully resolved query target
type Request struct {
	Satellite  string
	Product    string
	Sector     catalog.Sector
	Bands      []int
	Instrument geometry.Instrument
}

// Query returns the listing filters for the request
func (r Request) Query() catalog.Query {
	return catalog.Query{Sector: r.Sector, Bands: r.Bands}
}

// Projection returns the nominal projection of the request's satellite
func (r Request) Projection() geometry.Projection {
	return satelliteProjections[r.Satellite]
}

// ResolveSatellite maps a satellite name or alias to its bucket name
func ResolveSatellite(name string) (string, error) {
	if _, ok := satelliteProjections[name]; ok {
		return name, nil
	}
	upper := strings.ToUpper(strings.TrimSpace(name))
	if satellite, ok := satelliteAliases[upper]; ok {
		return satellite, nil
	}
	if _, ok := satelliteProjections[strings.ToLower(upper)]; ok {
		return strings.ToLower(upper), nil
	}
	return "", &catalog.InvalidQueryError{Field: "satellite", Value: name}
}

// ResolveDomain maps a domain name or alias to a sector
func ResolveDomain(name string) (catalog.Sector, error) {
	if sector, ok := domainAliases[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return sector, nil
	}
	return catalog.SectorNone, &catalog.InvalidQueryError{Field: "domain", Value: name}
}

// Resolve validates and normalizes a query target. For imager products the
// domain letter is appended to the product unless the product already ends
// in one, in which case the product's letter wins. Other products ignore the
// domain.
func Resolve(satellite, product, domain string, bands []int) (Request, error) {
	var req Request
	var err error
	if req.Satellite, err = ResolveSatellite(satellite); err != nil {
		return Request{}, err
	}

	product = strings.TrimSpace(product)
	if alias, ok := productAliases[strings.ToUpper(product)]; ok {
		product = alias
	}
	if !productNamePattern.MatchString(product) {
		return Request{}, &catalog.InvalidQueryError{Field: "product", Value: product}
	}
	req.Instrument, _ = geometry.ParseInstrument(product)

	if req.Instrument == geometry.ABI {
		if req.Product, req.Sector, err = imagerProduct(product, domain); err != nil {
			return Request{}, err
		}
	} else {
		req.Product = product
	}

	req.Bands = append([]int{}, bands...)
	sort.Ints(req.Bands)
	if err = req.Query().Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

func imagerProduct(product, domain string) (string, catalog.Sector, error) {
	if last := catalog.Sector(product[len(product)-1:]); last == catalog.SectorCONUS || last == catalog.SectorFullDisk || last == catalog.SectorMesoscale {
		// A numbered mesoscale domain can still narrow a mesoscale product.
		if last == catalog.SectorMesoscale {
			if sector, err := ResolveDomain(domain); err == nil && sector.IsSubRegion() {
				return product, sector, nil
			}
		}
		return product, last, nil
	}

	sector, err := ResolveDomain(domain)
	if err != nil {
		return "", catalog.SectorNone, err
	}
	return product + string(sector.Family()), sector, nil
}

// ParseBands reads a comma separated band list such as "1,2,3"
func ParseBands(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var bands []int
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(token)), "C")
		band, err := strconv.Atoi(token)
		if err != nil {
			return nil, &catalog.InvalidQueryError{Field: "band", Value: token}
		}
		bands = append(bands, band)
	}
	return bands, nil
}
