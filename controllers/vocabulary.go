package controllers

import (
	"net/http"
	"strconv"

	"github.com/nicolasvargaszz/learn-chinese-game/services/vocabulary"

	"github.com/gin-gonic/gin"
)

// @Summary List every word
// @Description Returns the whole vocabulary
// @Tags vocabulary
// @Produce json
// @Success 200 {object} object{words=[]vocabulary.Word}
// @Router /api/v1/words [get]
func GetWords(store *vocabulary.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"words": store.All()})
	}
}

// @Summary List the words of a lesson
// @Tags vocabulary
// @Produce json
// @Param lesson_id path int true "Lesson number"
// @Success 200 {object} object{words=[]vocabulary.Word,lesson=integer}
// @Failure 400 {object} object{error=string}
// @Router /api/v1/words/lesson/{lesson_id} [get]
func GetWordsByLesson(store *vocabulary.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, err := strconv.Atoi(c.Param("lesson_id"))
		if err != nil || lesson < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson id"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"words": store.ByLesson(lesson), "lesson": lesson})
	}
}

// @Summary List the words of a category
// @Tags vocabulary
// @Produce json
// @Param category path string true "Category name"
// @Success 200 {object} object{words=[]vocabulary.Word,category=string}
// @Router /api/v1/words/category/{category} [get]
func GetWordsByCategory(store *vocabulary.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Param("category")
		c.JSON(http.StatusOK, gin.H{"words": store.ByCategory(category), "category": category})
	}
}

// @Summary List lesson numbers
// @Tags vocabulary
// @Produce json
// @Success 200 {object} object{lessons=[]integer}
// @Router /api/v1/lessons [get]
func GetLessons(store *vocabulary.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"lessons": store.Lessons()})
	}
}

// @Summary List categories
// @Tags vocabulary
// @Produce json
// @Success 200 {object} object{categories=[]string}
// @Router /api/v1/categories [get]
func GetCategories(store *vocabulary.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"categories": store.Categories()})
	}
}
