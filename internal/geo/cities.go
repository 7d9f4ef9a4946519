package geo

import (
	"sort"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/textnorm"
)

var ErrUnknownCity = apperror.InvalidArgument("unrecognized city")

// cityCoordinates is keyed by the folded (lowercase, no diacritics) city name.
var cityCoordinates = map[string]Point{
	"bucuresti":             {Lat: 44.4268, Lon: 26.1025},
	"bucharest":             {Lat: 44.4268, Lon: 26.1025},
	"cluj-napoca":           {Lat: 46.7712, Lon: 23.6236},
	"cluj":                  {Lat: 46.7712, Lon: 23.6236},
	"timisoara":             {Lat: 45.7489, Lon: 21.2087},
	"iasi":                  {Lat: 47.1585, Lon: 27.6014},
	"constanta":             {Lat: 44.1598, Lon: 28.6348},
	"brasov":                {Lat: 45.6427, Lon: 25.5887},
	"sibiu":                 {Lat: 45.7983, Lon: 24.1256},
	"oradea":                {Lat: 47.0465, Lon: 21.9189},
	"craiova":               {Lat: 44.3302, Lon: 23.7949},
	"galati":                {Lat: 45.4353, Lon: 28.0080},
	"ploiesti":              {Lat: 44.9462, Lon: 26.0254},
	"arad":                  {Lat: 46.1866, Lon: 21.3123},
	"pitesti":               {Lat: 44.8565, Lon: 24.8692},
	"bacau":                 {Lat: 46.5670, Lon: 26.9146},
	"suceava":               {Lat: 47.6514, Lon: 26.2556},
	"targu mures":           {Lat: 46.5455, Lon: 24.5625},
	"targu-mures":           {Lat: 46.5455, Lon: 24.5625},
	"baia mare":             {Lat: 47.6567, Lon: 23.5850},
	"buzau":                 {Lat: 45.1500, Lon: 26.8333},
	"satu mare":             {Lat: 47.7900, Lon: 22.8900},
	"botosani":              {Lat: 47.7486, Lon: 26.6694},
	"ramnicu valcea":        {Lat: 45.1000, Lon: 24.3667},
	"drobeta-turnu severin": {Lat: 44.6369, Lon: 22.6597},
	"piatra neamt":          {Lat: 46.9275, Lon: 26.3708},
	"targu jiu":             {Lat: 45.0342, Lon: 23.2747},
	"targoviste":            {Lat: 44.9250, Lon: 25.4567},
	"focsani":               {Lat: 45.6967, Lon: 27.1856},
	"bistrita":              {Lat: 47.1333, Lon: 24.5000},
	"tulcea":                {Lat: 45.1787, Lon: 28.8050},
	"alba iulia":            {Lat: 46.0667, Lon: 23.5833},
	"deva":                  {Lat: 45.8833, Lon: 22.9000},
	"zalau":                 {Lat: 47.1911, Lon: 23.0572},
	"resita":                {Lat: 45.3008, Lon: 21.8892},
	"slatina":               {Lat: 44.4333, Lon: 24.3667},
	"calarasi":              {Lat: 44.2000, Lon: 27.3333},
	"giurgiu":               {Lat: 43.9037, Lon: 25.9699},
	"alexandria":            {Lat: 43.9686, Lon: 25.3333},
	"slobozia":              {Lat: 44.5639, Lon: 27.3661},
	"vaslui":                {Lat: 46.6407, Lon: 27.7276},
	"miercurea ciuc":        {Lat: 46.3595, Lon: 25.8017},
	"sfantu gheorghe":       {Lat: 45.8636, Lon: 25.7875},
	"sinaia":                {Lat: 45.3500, Lon: 25.5500},
	"busteni":               {Lat: 45.4153, Lon: 25.5375},
	"predeal":               {Lat: 45.5000, Lon: 25.5667},
	"sighisoara":            {Lat: 46.2197, Lon: 24.7964},
	"vatra dornei":          {Lat: 47.3450, Lon: 25.3584},
	"mamaia":                {Lat: 44.2470, Lon: 28.6190},
	"eforie":                {Lat: 44.0667, Lon: 28.6333},
	"mangalia":              {Lat: 43.8167, Lon: 28.5833},
	"sulina":                {Lat: 45.1560, Lon: 29.6530},
}

// Lookup returns the coordinates of a known city. Matching ignores case,
// diacritics and surrounding whitespace.
func Lookup(city string) (Point, error) {
	key := textnorm.Fold(city)
	if key == "" {
		return Point{}, ErrUnknownCity
	}
	p, ok := cityCoordinates[key]
	if !ok {
		return Point{}, ErrUnknownCity
	}
	return p, nil
}

// Cities lists the recognized city keys in alphabetical order.
func Cities() []string {
	names := make([]string, 0, len(cityCoordinates))
	for name := range cityCoordinates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnown reports whether Lookup would succeed for city.
func IsKnown(city string) bool {
	_, err := Lookup(city)
	return err == nil
}
