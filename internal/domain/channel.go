package domain

import "fmt"

// Channel is a named sales source with its own upstream schema.
type Channel string

const (
	ChannelZomato   Channel = "zomato"
	ChannelSwiggy   Channel = "swiggy"
	ChannelTakeaway Channel = "takeaway"
	ChannelSubs     Channel = "subs"
	ChannelRistaPOS Channel = "rista-pos"
)

var AllChannels = []Channel{
	ChannelZomato,
	ChannelSwiggy,
	ChannelTakeaway,
	ChannelSubs,
	ChannelRistaPOS,
}

func ParseChannel(s string) (Channel, error) {
	for _, c := range AllChannels {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown channel %q", s)
}

// IsAggregator reports whether the channel is served by the insights
// endpoint rather than the POS client.
func (c Channel) IsAggregator() bool {
	return c != ChannelRistaPOS
}

// GroupBy is the temporal bucketing applied to aggregated metrics.
type GroupBy string

const (
	GroupByTotal GroupBy = "total"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case GroupByTotal, GroupByWeek, GroupByMonth:
		return GroupBy(s), nil
	case "":
		return GroupByTotal, nil
	}
	return "", fmt.Errorf("unknown groupBy %q", s)
}
