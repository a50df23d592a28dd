package postgres

/*
 * 'Word' is the word bank the secret word is drawn from. Reference
 * data, read-only to the game code; seeded at migration time.
 */
type Word struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Word string `gorm:"size:100;not null;uniqueIndex:idx_words_word" json:"word"`
}
