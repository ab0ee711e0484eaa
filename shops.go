package main

import "sort"

// RepairShop is one static marker on the nearby-shops map.
type RepairShop struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// defaultAnchorLat/Lon is where the map centers when the caller gives no
// position.
const (
	defaultAnchorLat = -34.6037
	defaultAnchorLon = -58.3816
)

// repairShops is the static marker list. No live lookup; the map widget
// only ever rendered fixed markers.
var repairShops = []RepairShop{
	{Name: "Taller Centro", Lat: -34.6037, Lon: -58.3816},
	{Name: "Electricidad del Automotor Sur", Lat: -34.6158, Lon: -58.3731},
	{Name: "Frenos y Suspensión Norte", Lat: -34.5890, Lon: -58.3974},
	{Name: "Mecánica Integral Oeste", Lat: -34.6092, Lon: -58.4173},
	{Name: "Gomería y Tren Delantero Avenida", Lat: -34.6211, Lon: -58.4004},
}

// NearbyShops returns up to n shops ordered by distance from (lat, lon).
// Squared-degree distance is enough at city scale; no great-circle math.
func NearbyShops(lat, lon float64, n int) []RepairShop {
	shops := make([]RepairShop, len(repairShops))
	copy(shops, repairShops)

	sort.SliceStable(shops, func(i, j int) bool {
		return sqDist(shops[i], lat, lon) < sqDist(shops[j], lat, lon)
	})
	if n > 0 && n < len(shops) {
		shops = shops[:n]
	}
	return shops
}

func sqDist(s RepairShop, lat, lon float64) float64 {
	dLat := s.Lat - lat
	dLon := s.Lon - lon
	return dLat*dLat + dLon*dLon
}
