package services

import (
	"time"

	"social-analytics/utils"
)

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func newTestTransformer() *Transformer {
	return NewTransformer(newTestLogger(), DefaultTopPostsLimit).WithClock(clock)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const overviewCSV = `Account overview,,,,
Date,Impressions,Likes,New follows,Unfollows
2024-01-01,100,10,5,0
2024-01-02,200,20,3,0
2024-01-03,300,30,-1,0
`

const contentCSV = `Post id,Date,Post text,Impressions,Likes,Reposts,Replies
1001,2024-01-02 10:00,"Unpopular opinion: most dashboards are wrong, here's why",50,5,1,1
1002,2024-01-03 18:30,Why does nobody talk about this?,80,8,2,0
`

const videoCSV = `Date,Views,Watch Time (ms),Completion Rate (%),Estimated Revenue
2024-01-01,100,120000,40,1.50
2024-01-02,300,240000,60,$2.25
`
