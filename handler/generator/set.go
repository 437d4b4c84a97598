package generator

import (
	"github.com/Doridian/synthDNS/handler"
	"github.com/Doridian/synthDNS/handler/generator/apex"
	"github.com/Doridian/synthDNS/handler/generator/cidr"
	"github.com/Doridian/synthDNS/handler/generator/counter"
	"github.com/Doridian/synthDNS/handler/generator/epoch"
	"github.com/Doridian/synthDNS/handler/generator/myip"
	"github.com/Doridian/synthDNS/handler/generator/random"
	"github.com/Doridian/synthDNS/zone"
	"go.uber.org/zap"
)

type Config struct {
	CidrCacheSize int
	Log           *zap.Logger
}

// New builds one generator for every zone kind.
func New(zones *zone.Zones, config Config) (map[zone.Kind]handler.Generator, error) {
	cidrGen, err := cidr.New(zones.Name(zone.CIDR), config.CidrCacheSize)
	if err != nil {
		return nil, err
	}

	return map[zone.Kind]handler.Generator{
		zone.Root:    apex.New(),
		zone.Counter: counter.New(),
		zone.MyIP:    myip.New(config.Log),
		zone.Coin:    random.NewCoin(),
		zone.Dice:    random.NewDice(),
		zone.CIDR:    cidrGen,
		zone.Time:    epoch.New(zones.Name(zone.Time)),
	}, nil
}
