package nitter

import "encoding/xml"

// feed is the subset of the RSS document the resolver needs: the channel
// title carries the account display name and the item links carry post ids.
type feed struct {
	XMLName xml.Name `xml:"rss"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title string `xml:"title"`
	Items []item `xml:"item"`
}

type item struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	Creator string `xml:"creator"`
}
