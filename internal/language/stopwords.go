package language

import "strings"

// russianStopwords is the default stopword list for the Russian
// pipeline, covering pronouns, prepositions, conjunctions, particles
// and the most frequent function words.
const russianStopwords = `а будет будто бы был была были было быть в вам вас
вдруг ведь во вот впрочем все всегда всего всех всю вы г где говорил да
даже два для до другой его ее ей ему если есть еще ж же жизнь за зачем
здесь и из или им иногда их к кажется как какая какой когда конечно
которого которые кто куда ли лучше между меня мне много может можно мой
моя мы на над надо наконец нас не него нее ней нельзя нет ни нибудь
никогда ним них ничего но ну о об один он она они опять от перед по под
после потом потому почти при про раз разве с сам свое свою себе себя
сегодня сейчас сказал сказала сказать со совсем так такой там тебя тем
теперь то тогда того тоже только том тот три тут ты у уж уже хорошо
хоть чего человек чем через что чтоб чтобы чуть эти этого этой этом
этот эту я`

// RussianStopwords returns the default stopword set for the Russian
// pipeline.
func RussianStopwords() map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(russianStopwords) {
		set[w] = true
	}
	return set
}
