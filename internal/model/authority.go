package model

// Authority strings granted through the settings catalog and embedded in
// access tokens. Routes declare which of these they require; the guard
// checks for a non-empty intersection.
const (
	AuthorityUser           = "사용자"     // baseline member authority
	AuthorityAdmin          = "관리자"     // site administration (settings catalog)
	AuthorityEquipmentAdmin = "장비관리자" // rental approval and oversight
	AuthorityVideoAdmin     = "영상관리자" // video approval and oversight
	AuthorityBoardAdmin     = "게시판관리자" // board post/comment oversight
)
