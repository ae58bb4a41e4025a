package dto

import "encoding/xml"

// PlayerResponse is the part of ytInitialPlayerResponse used for metadata and captions.
type PlayerResponse struct {
	PlayabilityStatus *PlayabilityStatus `json:"playabilityStatus"`
	VideoDetails      *VideoDetails      `json:"videoDetails"`
	Microformat       *struct {
		PlayerMicroformatRenderer *MicroformatRenderer `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []CaptionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type PlayabilityStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type VideoDetails struct {
	VideoID          string `json:"videoId"`
	Title            string `json:"title"`
	LengthSeconds    string `json:"lengthSeconds"`
	ChannelID        string `json:"channelId"`
	ShortDescription string `json:"shortDescription"`
	ViewCount        string `json:"viewCount"`
	Author           string `json:"author"`
}

type MicroformatRenderer struct {
	UploadDate       string `json:"uploadDate"`
	PublishDate      string `json:"publishDate"`
	OwnerProfileURL  string `json:"ownerProfileUrl"`
	OwnerChannelName string `json:"ownerChannelName"`
}

// CaptionTrack is one entry of captionTracks.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// TimedText is the legacy timedtext XML caption format.
type TimedText struct {
	XMLName xml.Name        `xml:"transcript"`
	Lines   []TimedTextLine `xml:"text"`
}

type TimedTextLine struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Text     string  `xml:",chardata"`
}
